package filesystem

import (
	"context"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"
)

// Env is what an operation runs against.
type Env struct {
	FS   FileSystem
	Scan ScanOptions
}

// Op is one filesystem capability invocation. The set is closed: ListFiles,
// ReadFile and WriteFile. Run never fails; problems come back as an
// engine.ErrorPayload in the result.
type Op interface {
	Name() string
	Run(ctx context.Context, env Env) any
	isOp()
}

// ListFiles enumerates reviewable source files under Directory.
type ListFiles struct {
	Directory string `json:"directory" jsonschema_description:"Directory to scan recursively for source files"`
}

// ReadFile returns the UTF-8 content of FilePath.
type ReadFile struct {
	FilePath string `json:"file_path" jsonschema_description:"Path of the file to read"`
}

// WriteFile replaces the content of FilePath.
type WriteFile struct {
	FilePath string `json:"file_path" jsonschema_description:"Path of the file to write"`
	Content  string `json:"content" jsonschema_description:"Complete new content of the file"`
}

// ListResult is the list_files result body. Files is never null.
type ListResult struct {
	Files []string `json:"files"`
}

// ReadResult is the read_file result body.
type ReadResult struct {
	Content string `json:"content"`
}

// WriteResult is the write_file result body.
type WriteResult struct {
	Success bool `json:"success"`
}

func (ListFiles) Name() string { return "list_files" }
func (ReadFile) Name() string  { return "read_file" }
func (WriteFile) Name() string { return "write_file" }

func (ListFiles) isOp() {}
func (ReadFile) isOp()  {}
func (WriteFile) isOp() {}

func (op ListFiles) Run(ctx context.Context, env Env) any {
	return ListResult{Files: listFilesImpl(ctx, env.FS, op.Directory, env.Scan)}
}

func (op ReadFile) Run(_ context.Context, env Env) any {
	content, err := readFileImpl(env.FS, op.FilePath)
	if err != nil {
		return errorPayload(err)
	}
	return ReadResult{Content: content}
}

func (op WriteFile) Run(_ context.Context, env Env) any {
	if err := writeFileImpl(env.FS, op.FilePath, op.Content); err != nil {
		return errorPayload(err)
	}
	return WriteResult{Success: true}
}

func errorPayload(err error) engine.ErrorPayload {
	return engine.ErrorPayload{Error: true, Message: err.Error()}
}
