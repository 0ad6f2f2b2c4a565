package engine

import (
	"time"

	"github.com/ChamsBouzaiene/reviewer/internal/prompts"
)

const (
	// DefaultMaxSteps bounds the number of model round-trips per session.
	DefaultMaxSteps = 15
	// DefaultCallTimeout bounds a single gateway call.
	DefaultCallTimeout = 2 * time.Minute
	// DefaultMaxOutputTokens caps each model response; large enough for whole-file writes.
	DefaultMaxOutputTokens = 8192
)

// AgentConfig holds configuration for an agent instance.
type AgentConfig struct {
	Model           string
	MaxSteps        int
	RetryConfig     *RetryConfig
	PromptID        string
	PromptVersion   prompts.PromptVersion // empty = latest
	MaxOutputTokens int
	Temperature     float32
	CallTimeout     time.Duration
}

// DefaultAgentConfig returns a default agent configuration.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Model:           "gemini-1.5-flash",
		MaxSteps:        DefaultMaxSteps,
		PromptID:        prompts.ReviewPromptID,
		MaxOutputTokens: DefaultMaxOutputTokens,
		CallTimeout:     DefaultCallTimeout,
	}
}
