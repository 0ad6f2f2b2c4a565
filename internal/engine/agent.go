package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Agent runs review sessions against one gateway and tool registry.
// Every Run starts from a fresh conversation; nothing carries over between runs.
type Agent struct {
	llm               LLMClient
	tools             *ToolRegistry
	config            AgentConfig
	hooks             Hooks
	systemInstruction string
	lastState         *State
}

// Run executes one session seeded with userMessage as the first requester turn.
func (a *Agent) Run(ctx context.Context, userMessage string) (Outcome, error) {
	conv, err := NewConversation(Turn{
		Role:  RoleRequester,
		Parts: []Part{TextPart{Text: userMessage}},
	})
	if err != nil {
		return Outcome{Kind: OutcomeFailure, Reason: err.Error()}, fmt.Errorf("failed to seed conversation: %w", err)
	}

	st := &State{
		SessionID:         uuid.NewString(),
		Conversation:      conv,
		SystemInstruction: a.systemInstruction,
		Model:             a.config.Model,
		MaxSteps:          a.config.MaxSteps,
	}

	opts := ChatOptions{
		Temperature:     a.config.Temperature,
		MaxOutputTokens: a.config.MaxOutputTokens,
		RetryConfig:     a.config.RetryConfig,
		CallTimeout:     a.config.CallTimeout,
	}

	outcome, err := Run(ctx, a.llm, a.tools, st, a.hooks, opts)
	a.lastState = st
	return outcome, err
}

// LastState returns the state of the most recent Run.
// Callers should treat the returned state as read-only.
func (a *Agent) LastState() *State {
	return a.lastState
}

// SystemInstruction returns the instruction sent with every gateway call.
func (a *Agent) SystemInstruction() string {
	return a.systemInstruction
}

// Tools returns the registry the agent dispatches against.
func (a *Agent) Tools() *ToolRegistry {
	return a.tools
}
