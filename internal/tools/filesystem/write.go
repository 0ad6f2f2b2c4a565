package filesystem

import (
	"fmt"
)

// writeFileImpl overwrites path with content, creating the file (mode 0644) if
// needed. Parent directories are not created and no backup is kept.
func writeFileImpl(fs FileSystem, path, content string) error {
	if path == "" {
		return fmt.Errorf("file_path is empty")
	}
	if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
