package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ChamsBouzaiene/reviewer/internal/prompts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient answers every call with a fixed summary.
type MockLLMClient struct {
	requests []ChatRequest
}

func (m *MockLLMClient) Chat(_ context.Context, req ChatRequest) (LLMResponse, error) {
	m.requests = append(m.requests, req)
	return LLMResponse{Text: "summary", FinishReason: "stop"}, nil
}

func newTestTools(t *testing.T) *ToolRegistry {
	t.Helper()
	reg, err := NewToolRegistry(Tool{
		Name:     "list_files",
		Fn:       func(context.Context, map[string]any) (string, error) { return `{"files":[]}`, nil },
		Metadata: ToolMetadata{Category: "filesystem", Tags: []string{"read-only"}},
	})
	require.NoError(t, err)
	return reg
}

func quietLogger() zerolog.Logger { return zerolog.Nop() }

func TestAgentBuilder_Defaults(t *testing.T) {
	agent, err := NewAgentBuilder().
		WithLLM(&MockLLMClient{}).
		WithToolRegistry(newTestTools(t)).
		WithLogger(quietLogger()).
		Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxSteps, agent.config.MaxSteps)
	assert.Equal(t, "gemini-1.5-flash", agent.config.Model)
	assert.Equal(t, DefaultCallTimeout, agent.config.CallTimeout)
	assert.Equal(t, DefaultMaxOutputTokens, agent.config.MaxOutputTokens)
	assert.Contains(t, agent.SystemInstruction(), "You are an expert code reviewer.")
	assert.Contains(t, agent.SystemInstruction(), "return ONLY a text summary")
	assert.Equal(t, []string{"list_files"}, agent.Tools().Names())
	require.Len(t, agent.hooks, 1)
	assert.IsType(t, LoggerHook{}, agent.hooks[0])
}

func TestAgentBuilder_Overrides(t *testing.T) {
	rc := &RetryConfig{LLMPolicy: RetryPolicy{MaxRetries: 1}}
	hooks := Hooks{NopHook{}}

	b, err := NewAgentBuilder().
		WithLLM(&MockLLMClient{}).
		WithToolRegistry(newTestTools(t)).
		WithModel("gpt-4o-mini").
		WithMaxSteps(3).
		WithMaxOutputTokens(100).
		WithTemperature(0.3).
		WithCallTimeout(time.Second).
		WithRetryConfig(rc).
		WithHooks(hooks).
		WithLogger(quietLogger()).
		WithPrompt(prompts.ReviewPromptID, prompts.PromptV1)
	require.NoError(t, err)

	agent, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", agent.config.Model)
	assert.Equal(t, 3, agent.config.MaxSteps)
	assert.Equal(t, 100, agent.config.MaxOutputTokens)
	assert.InDelta(t, 0.3, agent.config.Temperature, 1e-6)
	assert.Equal(t, time.Second, agent.config.CallTimeout)
	assert.Same(t, rc, agent.config.RetryConfig)
	assert.Equal(t, prompts.PromptV1, agent.config.PromptVersion)
	assert.Equal(t, hooks, agent.hooks)
}

func TestAgentBuilder_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAgentBuilder().WithToolRegistry(newTestTools(t)).Build(ctx)
	assert.ErrorContains(t, err, "LLM client not configured")

	_, err = NewAgentBuilder().WithLLM(&MockLLMClient{}).Build(ctx)
	assert.ErrorContains(t, err, "tools not configured")

	_, err = NewAgentBuilder().WithLLM(&MockLLMClient{}).WithToolRegistry(newTestTools(t)).WithMaxSteps(0).Build(ctx)
	assert.ErrorContains(t, err, "max steps must be positive")

	_, err = NewAgentBuilder().WithPrompt("missing", prompts.PromptV1)
	assert.Error(t, err)
}

func TestAgentBuilder_CustomRules(t *testing.T) {
	var buf bytes.Buffer
	agent, err := NewAgentBuilder().
		WithLLM(&MockLLMClient{}).
		WithToolRegistry(newTestTools(t)).
		WithCustomRules("Never rename exported functions. {{not_a_var}}").
		WithLogger(zerolog.New(&buf)).
		Build(context.Background())
	require.NoError(t, err)

	instruction := agent.SystemInstruction()
	assert.True(t, strings.HasPrefix(instruction, "You are an expert code reviewer."))
	assert.Contains(t, instruction, "[PROJECT RULES]")
	assert.Contains(t, instruction, "Never rename exported functions. {{not_a_var}}")
	assert.Contains(t, buf.String(), "injected project rules")
	assert.Contains(t, buf.String(), "agent configured")
}

func TestAgent_RunStartsFresh(t *testing.T) {
	llm := &MockLLMClient{}
	agent, err := NewAgentBuilder().
		WithLLM(llm).
		WithToolRegistry(newTestTools(t)).
		WithLogger(quietLogger()).
		Build(context.Background())
	require.NoError(t, err)

	o, err := agent.Run(context.Background(), "Review and fix code in: /a")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSummary, o.Kind)
	first := agent.LastState()

	_, err = agent.Run(context.Background(), "Review and fix code in: /b")
	require.NoError(t, err)
	second := agent.LastState()

	assert.NotEqual(t, first.SessionID, second.SessionID)
	require.Len(t, llm.requests, 2)
	require.Len(t, llm.requests[1].History, 1)
	assert.Equal(t, "Review and fix code in: /b", llm.requests[1].History[0].Text())
	assert.Equal(t, agent.SystemInstruction(), llm.requests[1].SystemInstruction)
	assert.Equal(t, DefaultMaxOutputTokens, llm.requests[1].Options.MaxOutputTokens)
}
