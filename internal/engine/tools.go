package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ToolFunc executes a tool. The returned string is a JSON document handed back to
// the model verbatim. A non-nil error is converted into an error payload by Dispatch.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// ToolMetadata provides versioning and categorization for tools.
type ToolMetadata struct {
	Version  string   // e.g., "1.0.0"
	Category string   // e.g., "filesystem"
	Tags     []string // e.g., ["read-only", "idempotent"]
}

type Tool struct {
	Name        string
	Description string
	SchemaJSON  string
	Fn          ToolFunc
	Metadata    ToolMetadata
}

// ValidateArgs validates the provided arguments against the tool's JSON schema.
func (t Tool) ValidateArgs(args map[string]any) error {
	if t.SchemaJSON == "" {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errorMsgs []string
		for _, err := range result.Errors() {
			errorMsgs = append(errorMsgs, err.String())
		}
		return &ToolValidationError{
			ToolName: t.Name,
			Errors:   errorMsgs,
		}
	}

	return nil
}

// GetCategory returns the tool category, defaulting to "general" if unset.
func (t Tool) GetCategory() string {
	if t.Metadata.Category == "" {
		return "general"
	}
	return t.Metadata.Category
}

// ToolRegistry maps unique names to tools and remembers registration order, which
// is the order descriptors are advertised to the model.
type ToolRegistry struct {
	order []string
	tools map[string]Tool
}

// NewToolRegistry returns a registry holding tools, in order.
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t. Names must be non-empty and unique.
func (r *ToolRegistry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if t.Fn == nil {
		return fmt.Errorf("tool %s has no function", t.Name)
	}
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("tool %s already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup resolves a tool by name.
func (r *ToolRegistry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *ToolRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int { return len(r.order) }

// Schemas describes every tool in registration order.
func (r *ToolRegistry) Schemas() []ToolSchema {
	s := make([]ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		s = append(s, ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			JSONSchema:  t.SchemaJSON,
		})
	}
	return s
}

// Dispatch runs one tool call: resolve, validate, execute. It never panics on bad
// input; every failure comes back as an error for the driver to turn into data.
func (r *ToolRegistry) Dispatch(ctx context.Context, call ToolCall) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			result, err = "", fmt.Errorf("tool %s panicked: %v", call.Name, p)
		}
	}()

	if call.Error != "" {
		return "", fmt.Errorf("malformed tool call %s: %s", call.Name, call.Error)
	}

	t, ok := r.tools[call.Name]
	if !ok {
		return "", &ToolNotFoundError{Name: call.Name, Available: r.Names()}
	}

	if err := t.ValidateArgs(call.Args); err != nil {
		return "", fmt.Errorf("validation failed for tool %s: %w", call.Name, err)
	}

	out, err := t.Fn(ctx, call.Args)
	if err != nil {
		return "", fmt.Errorf("execution failed for tool %s: %w", call.Name, err)
	}

	return out, nil
}

// ErrorPayload is the structured body of a failed tool result.
type ErrorPayload struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// ErrorResult renders msg as an ErrorPayload JSON document.
func ErrorResult(msg string) string {
	b, err := json.Marshal(ErrorPayload{Error: true, Message: msg})
	if err != nil {
		return `{"error":true,"message":"unrenderable error"}`
	}
	return string(b)
}

// IsErrorResult reports whether content is an ErrorPayload with error set.
func IsErrorResult(content string) bool {
	var p ErrorPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return false
	}
	return p.Error
}
