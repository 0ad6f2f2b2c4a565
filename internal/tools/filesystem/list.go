package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ExcludeMode selects how excluded directory names are matched.
type ExcludeMode string

const (
	// ExcludeSubstring skips any path whose full string contains an excluded name,
	// wherever it occurs (including inside file names and the scan root itself).
	ExcludeSubstring ExcludeMode = "substring"
	// ExcludeSegment skips an entry only when its own name equals an excluded name.
	ExcludeSegment ExcludeMode = "segment"
)

var (
	// DefaultExcluded are never scanned.
	DefaultExcluded = []string{"node_modules", "dist", "build"}
	// DefaultExtensions are the file extensions list_files reports.
	DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".html", ".css"}
)

// ScanOptions configures list_files.
type ScanOptions struct {
	Mode       ExcludeMode
	Excluded   []string
	Extensions []string
	// Ignore, when set, skips paths matching the project's gitignore-style
	// patterns. Paths are matched relative to Root.
	Ignore *gitignore.GitIgnore
	Root   string
}

// DefaultScanOptions returns the compatible defaults: substring exclusion of
// node_modules, dist and build, web source extensions, no ignore patterns.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Mode:       ExcludeSubstring,
		Excluded:   DefaultExcluded,
		Extensions: DefaultExtensions,
	}
}

// NewIgnoreMatcher compiles gitignore-style patterns; nil when there are none.
func NewIgnoreMatcher(patterns []string) *gitignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(patterns...)
}

func (o ScanOptions) excluded(fullPath, name string) bool {
	for _, ex := range o.Excluded {
		switch o.Mode {
		case ExcludeSegment:
			if name == ex {
				return true
			}
		default:
			if strings.Contains(fullPath, ex) {
				return true
			}
		}
	}
	return false
}

func (o ScanOptions) ignored(fullPath string) bool {
	if o.Ignore == nil || o.Root == "" {
		return false
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(o.Root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return o.Ignore.MatchesPath(filepath.ToSlash(rel))
}

func (o ScanOptions) wanted(name string) bool {
	ext := extname(name)
	if ext == "" {
		return false
	}
	for _, e := range o.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// extname returns the extension from the last dot, or "" when the name has no
// dot or its only leading character is the dot (".js" has no extension).
func extname(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}

type scanFrame struct {
	dir     string
	entries []os.DirEntry
	next    int
	info    os.FileInfo
}

// listFilesImpl walks root depth-first in pre-order with an explicit stack.
// Entries are visited in ReadDir order; each joined path is tested for exclusion
// before it is stat-ed (following symlinks). Unreadable directories and entries
// that fail to stat are skipped. A directory already on the current path is not
// entered again, which stops symlink cycles.
func listFilesImpl(ctx context.Context, fsys FileSystem, root string, opts ScanOptions) []string {
	files := make([]string, 0)

	entries, err := fsys.ReadDir(root)
	if err != nil {
		return files
	}
	rootInfo, _ := fsys.Stat(root)
	stack := []*scanFrame{{dir: root, entries: entries, info: rootInfo}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return files
		}
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		name := entry.Name()
		fullPath := filepath.Join(top.dir, name)
		if opts.excluded(fullPath, name) || opts.ignored(fullPath) {
			continue
		}

		info, err := fsys.Stat(fullPath)
		if err != nil {
			continue
		}

		if info.IsDir() {
			if onStack(stack, info) {
				continue
			}
			children, err := fsys.ReadDir(fullPath)
			if err != nil {
				continue
			}
			stack = append(stack, &scanFrame{dir: fullPath, entries: children, info: info})
			continue
		}

		if opts.wanted(name) {
			files = append(files, fullPath)
		}
	}
	return files
}

func onStack(stack []*scanFrame, info os.FileInfo) bool {
	for _, f := range stack {
		if f.info != nil && os.SameFile(f.info, info) {
			return true
		}
	}
	return false
}
