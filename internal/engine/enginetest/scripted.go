// Package enginetest provides gateway doubles for driving the engine in tests.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"
)

// Step produces one gateway reply for the request it is given.
type Step func(ctx context.Context, req engine.ChatRequest) (engine.LLMResponse, error)

// ScriptedLLM replays Steps in order and records every request. It fails the
// call once the script runs out.
type ScriptedLLM struct {
	mu       sync.Mutex
	steps    []Step
	requests []engine.ChatRequest
}

// NewScriptedLLM returns a gateway that answers with steps, one per call.
func NewScriptedLLM(steps ...Step) *ScriptedLLM {
	return &ScriptedLLM{steps: steps}
}

// Chat implements engine.LLMClient.
func (s *ScriptedLLM) Chat(ctx context.Context, req engine.ChatRequest) (engine.LLMResponse, error) {
	s.mu.Lock()
	n := len(s.requests)
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if n >= len(s.steps) {
		return engine.LLMResponse{}, fmt.Errorf("no scripted response for call %d", n+1)
	}
	return s.steps[n](ctx, req)
}

// Calls returns how many times Chat was invoked.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of the recorded requests.
func (s *ScriptedLLM) Requests() []engine.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.ChatRequest(nil), s.requests...)
}

// Text answers with a terminal text response.
func Text(text string) Step {
	return func(context.Context, engine.ChatRequest) (engine.LLMResponse, error) {
		return engine.LLMResponse{
			Text:         text,
			FinishReason: "stop",
			Usage:        engine.Usage{Prompt: 10, Completion: 5, Total: 15},
		}, nil
	}
}

// Calls answers with the given tool calls.
func Calls(calls ...engine.ToolCall) Step {
	return func(context.Context, engine.ChatRequest) (engine.LLMResponse, error) {
		return engine.LLMResponse{
			ToolCalls:    append([]engine.ToolCall(nil), calls...),
			FinishReason: "tool_calls",
			Usage:        engine.Usage{Prompt: 10, Completion: 5, Total: 15},
		}, nil
	}
}

// Fail answers with err.
func Fail(err error) Step {
	return func(context.Context, engine.ChatRequest) (engine.LLMResponse, error) {
		return engine.LLMResponse{}, err
	}
}

// Block waits until the call context ends and returns its error.
func Block() Step {
	return func(ctx context.Context, _ engine.ChatRequest) (engine.LLMResponse, error) {
		<-ctx.Done()
		return engine.LLMResponse{}, ctx.Err()
	}
}

// Repeat returns n copies of step.
func Repeat(n int, step Step) []Step {
	out := make([]Step, n)
	for i := range out {
		out[i] = step
	}
	return out
}

// Call builds a tool call.
func Call(id, name string, args map[string]any) engine.ToolCall {
	return engine.ToolCall{ID: id, Name: name, Args: args}
}
