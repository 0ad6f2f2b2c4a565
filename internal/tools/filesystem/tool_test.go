package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func osEnv() Env {
	return Env{FS: NewOSFileSystem(), Scan: DefaultScanOptions()}
}

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "a.js")
	content := "const x = 1;\nconsole.log(`héllo`);\n"

	out, err := Execute(ctx, WriteFile{FilePath: path, Content: content}, osEnv())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, out)

	out, err = Execute(ctx, ReadFile{FilePath: path}, osEnv())
	require.NoError(t, err)
	var res ReadResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, content, res.Content)

	// Overwrite truncates.
	_, err = Execute(ctx, WriteFile{FilePath: path, Content: "x"}, osEnv())
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestWriteFile_MissingParentIsErrorPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "a.js")

	out, err := Execute(context.Background(), WriteFile{FilePath: path, Content: "x"}, osEnv())
	require.NoError(t, err)
	assert.True(t, engine.IsErrorResult(out))
	assert.Contains(t, out, "failed to write file")

	_, statErr := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadFile_MissingIsErrorPayload(t *testing.T) {
	out, err := Execute(context.Background(), ReadFile{FilePath: filepath.Join(t.TempDir(), "nope.js")}, osEnv())
	require.NoError(t, err)
	assert.True(t, engine.IsErrorResult(out))
}

func TestReadFile_NotLimitedToListedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "node_modules/lib/index.js")

	out, err := Execute(context.Background(), ReadFile{FilePath: filepath.Join(root, "node_modules/lib/index.js")}, osEnv())
	require.NoError(t, err)
	assert.False(t, engine.IsErrorResult(out))
	assert.Contains(t, out, "node_modules/lib/index.js")
}

func TestSchemaFor(t *testing.T) {
	tests := []struct {
		schema   func() (string, error)
		props    []string
		required []string
	}{
		{SchemaFor[ListFiles], []string{"directory"}, []string{"directory"}},
		{SchemaFor[ReadFile], []string{"file_path"}, []string{"file_path"}},
		{SchemaFor[WriteFile], []string{"file_path", "content"}, []string{"file_path", "content"}},
	}
	for _, tt := range tests {
		raw, err := tt.schema()
		require.NoError(t, err)

		var s struct {
			Type       string                    `json:"type"`
			Properties map[string]map[string]any `json:"properties"`
			Required   []string                  `json:"required"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &s))
		assert.Equal(t, "object", s.Type)
		assert.ElementsMatch(t, tt.required, s.Required)
		for _, p := range tt.props {
			require.Contains(t, s.Properties, p)
			assert.Equal(t, "string", s.Properties[p]["type"])
			assert.NotEmpty(t, s.Properties[p]["description"])
		}
		assert.NotContains(t, raw, "$ref")
	}
}

func TestDecodeOp(t *testing.T) {
	op, err := DecodeOp[WriteFile](map[string]any{"file_path": "/a.js", "content": "x"})
	require.NoError(t, err)
	assert.Equal(t, WriteFile{FilePath: "/a.js", Content: "x"}, op)

	_, err = DecodeOp[ReadFile](map[string]any{"file_path": 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments for read_file")
}

func TestToolConstructors(t *testing.T) {
	tests := []struct {
		ctor        func(Env) (engine.Tool, error)
		name        string
		description string
		category    string
	}{
		{NewListFilesTool, "list_files", "List all project source files", "filesystem"},
		{NewReadFileTool, "read_file", "Read file content", "filesystem"},
		{NewWriteFileTool, "write_file", "Write updated file content", "filesystem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, err := tt.ctor(osEnv())
			require.NoError(t, err)
			assert.Equal(t, tt.name, tool.Name)
			assert.Equal(t, tt.description, tool.Description)
			assert.Equal(t, tt.category, tool.GetCategory())
			assert.NotEmpty(t, tool.SchemaJSON)
			require.NotNil(t, tool.Fn)
		})
	}
}

func TestTools_ValidateAndRunThroughDispatch(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/app.ts")

	env := osEnv()
	list, err := NewListFilesTool(env)
	require.NoError(t, err)
	write, err := NewWriteFileTool(env)
	require.NoError(t, err)
	reg, err := engine.NewToolRegistry(list, write)
	require.NoError(t, err)

	ctx := context.Background()
	out, err := reg.Dispatch(ctx, engine.ToolCall{Name: "list_files", Args: map[string]any{"directory": root}})
	require.NoError(t, err)
	var files ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	assert.Equal(t, []string{filepath.Join(root, "src", "app.ts")}, files.Files)

	_, err = reg.Dispatch(ctx, engine.ToolCall{Name: "write_file", Args: map[string]any{"file_path": filepath.Join(root, "x.js")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	_, err = reg.Dispatch(ctx, engine.ToolCall{Name: "list_files", Args: map[string]any{"directory": 42}})
	assert.Error(t, err)
}
