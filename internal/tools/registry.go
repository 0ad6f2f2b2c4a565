package tools

import (
	"fmt"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/ChamsBouzaiene/reviewer/internal/tools/filesystem"
)

// ToolSet specifies which tools to include in the registry.
type ToolSet struct {
	ReadOnly bool // leave out write_file (dry run)
}

// NewToolRegistry builds the registry in advertised order: list_files, read_file,
// write_file.
func NewToolRegistry(env filesystem.Env, set ToolSet) (*engine.ToolRegistry, error) {
	ctors := []func(filesystem.Env) (engine.Tool, error){
		filesystem.NewListFilesTool,
		filesystem.NewReadFileTool,
	}
	if !set.ReadOnly {
		ctors = append(ctors, filesystem.NewWriteFileTool)
	}

	reg, err := engine.NewToolRegistry()
	if err != nil {
		return nil, err
	}
	for _, ctor := range ctors {
		t, err := ctor(env)
		if err != nil {
			return nil, fmt.Errorf("failed to create tool: %w", err)
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
