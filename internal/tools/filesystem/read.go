package filesystem

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// readFileImpl reads path as given (absolute, or relative to the working
// directory); it is not limited to files list_files reported. Invalid UTF-8
// sequences are replaced with U+FFFD.
func readFileImpl(fs FileSystem, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file_path is empty")
	}
	contentBytes, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(contentBytes) {
		return strings.ToValidUTF8(string(contentBytes), "�"), nil
	}
	return string(contentBytes), nil
}
