package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files (with parent dirs) under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("// "+f+"\n"), 0644))
	}
}

func list(t *testing.T, root string, opts ScanOptions) []string {
	t.Helper()
	return listFilesImpl(context.Background(), NewOSFileSystem(), root, opts)
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestListFiles_ExtensionFilterAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"index.html", "README.md", "main.go",
		"src/app.js", "src/app.test.tsx", "src/data.json",
		"src/ui/button.jsx", "src/ui/theme.css", "src/ui/deep/more/types.ts",
	)

	got := list(t, root, DefaultScanOptions())
	assert.Equal(t, []string{
		"index.html",
		"src/app.js",
		"src/app.test.tsx",
		"src/ui/button.jsx",
		"src/ui/deep/more/types.ts",
		"src/ui/theme.css",
	}, rel(t, root, got))
	for _, p := range got {
		assert.True(t, filepath.IsAbs(p), p)
	}
}

func TestListFiles_SkipsExcludedDirectoriesAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"node_modules/react/index.js",
		"dist/bundle.js",
		"packages/web/build/out.js",
		"packages/web/src/keep.ts",
	)

	got := list(t, root, DefaultScanOptions())
	assert.Equal(t, []string{"packages/web/src/keep.ts"}, rel(t, root, got))
}

func TestListFiles_SubstringVersusSegment(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "my_build_notes.js", "distance.ts", "src/app.js", "build/x.js")

	substring := list(t, root, DefaultScanOptions())
	assert.Equal(t, []string{"src/app.js"}, rel(t, root, substring))

	opts := DefaultScanOptions()
	opts.Mode = ExcludeSegment
	segment := list(t, root, opts)
	assert.Equal(t, []string{"distance.ts", "my_build_notes.js", "src/app.js"}, rel(t, root, segment))
}

func TestListFiles_DotfileHasNoExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, ".js", ".eslintrc.js", "a.js")

	got := list(t, root, DefaultScanOptions())
	assert.Equal(t, []string{".eslintrc.js", "a.js"}, rel(t, root, got))
}

func TestListFiles_EmptyAndMissingDirectories(t *testing.T) {
	root := t.TempDir()

	got := list(t, root, DefaultScanOptions())
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = list(t, filepath.Join(root, "missing"), DefaultScanOptions())
	require.NotNil(t, got)
	assert.Empty(t, got)

	out, err := Execute(context.Background(), ListFiles{Directory: root}, Env{FS: NewOSFileSystem(), Scan: DefaultScanOptions()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"files":[]}`, out)
}

func TestListFiles_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "legacy/old.js", "vendor/app.min.js", "src/app.js", "src/app.min.js")

	opts := DefaultScanOptions()
	opts.Root = root
	opts.Ignore = NewIgnoreMatcher([]string{"legacy", "*.min.js"})

	got := list(t, root, opts)
	assert.Equal(t, []string{"src/app.js"}, rel(t, root, got))

	assert.Nil(t, NewIgnoreMatcher(nil))
}

func TestListFiles_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.js", "b.vue", "c.svelte")

	opts := DefaultScanOptions()
	opts.Extensions = []string{".vue", ".svelte"}

	got := list(t, root, opts)
	assert.Equal(t, []string{"b.vue", "c.svelte"}, rel(t, root, got))
}

func TestListFiles_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/a.js")
	if err := os.Symlink(root, filepath.Join(root, "src", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got := list(t, root, DefaultScanOptions())
	assert.Equal(t, []string{"src/a.js"}, rel(t, root, got))
}

func TestListFiles_FollowsSymlinkedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "real/a.ts")
	if err := os.Symlink(filepath.Join(root, "real", "a.ts"), filepath.Join(root, "link.ts")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.ts"), filepath.Join(root, "dangling.ts")))

	got := list(t, root, DefaultScanOptions())
	assert.Equal(t, []string{"link.ts", "real/a.ts"}, rel(t, root, got))
}
