package filesystem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/invopop/jsonschema"
)

// SchemaFor reflects the JSON schema of an operation's arguments.
func SchemaFor[T Op]() (string, error) {
	var zero T
	reflector := jsonschema.Reflector{
		// Expand definitions inline instead of using $refs
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(zero)
	schema.Version = ""
	if schema.Type == "" {
		schema.Type = "object"
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema for %s: %w", zero.Name(), err)
	}
	return string(b), nil
}

// DecodeOp turns validated model arguments into the operation value.
func DecodeOp[T Op](args map[string]any) (T, error) {
	var op T
	raw, err := json.Marshal(args)
	if err != nil {
		return op, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &op); err != nil {
		return op, fmt.Errorf("invalid arguments for %s: %w", op.Name(), err)
	}
	return op, nil
}

func newTool[T Op](env Env, description string, meta engine.ToolMetadata) (engine.Tool, error) {
	var zero T
	schema, err := SchemaFor[T]()
	if err != nil {
		return engine.Tool{}, err
	}
	return engine.Tool{
		Name:        zero.Name(),
		Description: description,
		SchemaJSON:  schema,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			op, err := DecodeOp[T](args)
			if err != nil {
				return "", err
			}
			return Execute(ctx, op, env)
		},
		Metadata: meta,
	}, nil
}

// Execute runs op and renders its result as JSON.
func Execute(ctx context.Context, op Op, env Env) (string, error) {
	b, err := json.Marshal(op.Run(ctx, env))
	if err != nil {
		return "", fmt.Errorf("failed to encode %s result: %w", op.Name(), err)
	}
	return string(b), nil
}

// NewListFilesTool creates the list_files tool.
func NewListFilesTool(env Env) (engine.Tool, error) {
	return newTool[ListFiles](env, "List all project source files", engine.ToolMetadata{
		Version:  "1.0.0",
		Category: "filesystem",
		Tags:     []string{"read-only", "idempotent"},
	})
}

// NewReadFileTool creates the read_file tool.
func NewReadFileTool(env Env) (engine.Tool, error) {
	return newTool[ReadFile](env, "Read file content", engine.ToolMetadata{
		Version:  "1.0.0",
		Category: "filesystem",
		Tags:     []string{"read-only", "idempotent"},
	})
}

// NewWriteFileTool creates the write_file tool.
func NewWriteFileTool(env Env) (engine.Tool, error) {
	return newTool[WriteFile](env, "Write updated file content", engine.ToolMetadata{
		Version:  "1.0.0",
		Category: "filesystem",
		Tags:     []string{"write", "side-effect"},
	})
}
