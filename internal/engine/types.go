package engine

import (
	"context"
	"time"
)

// Usage holds token accounting returned by providers.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// Add accumulates u into the receiver.
func (u *Usage) Add(o Usage) {
	u.Prompt += o.Prompt
	u.Completion += o.Completion
	u.Total += o.Total
}

// ToolCall represents a function/tool the model requested.
type ToolCall struct {
	ID    string // Provider-specific tool call ID; assigned locally when the provider has none
	Name  string
	Args  map[string]any
	Error string // Set by provider if the call arrived malformed (e.g. unparsable arguments)
}

// ChatRequest is everything one gateway round-trip needs.
type ChatRequest struct {
	Model             string
	SystemInstruction string
	History           []Turn
	Tools             []ToolSchema
	Options           ChatOptions
}

// LLMResponse is a normalized result of one chat call.
// A response carrying no ToolCalls is terminal and Text is the summary.
type LLMResponse struct {
	Text         string
	ToolCalls    []ToolCall // zero or more tool calls requested by the model
	Usage        Usage
	FinishReason string // "stop" | "length" | "tool_calls" | "content_filter"
}

// LLMClient abstracts the model gateway (OpenAI-compatible, Anthropic, ...).
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (LLMResponse, error)
}

// ChatOptions keeps knobs forwarded to the SDK and to the driver.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
	RetryConfig     *RetryConfig  // nil = DefaultRetryConfig
	CallTimeout     time.Duration // per gateway call; 0 = no limit
}

// ToolSchema is the descriptor advertised to the model for function calling.
type ToolSchema struct {
	Name        string
	Description string
	JSONSchema  string // raw JSON schema of the arguments object
}
