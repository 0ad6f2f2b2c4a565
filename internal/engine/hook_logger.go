// engine/hook_logger.go
package engine

import (
	"context"
	"time"

	units "github.com/docker/go-units"
	"github.com/rs/zerolog"
)

const (
	argPreviewLimit    = 120
	resultPreviewLimit = 100
)

// LoggerHook writes one structured line per engine event.
type LoggerHook struct{ L zerolog.Logger }

func (h LoggerHook) OnStepStart(_ context.Context, st *State) {
	h.L.Debug().Str("session", st.SessionID).Int("step", st.Step).Int("max_steps", st.MaxSteps).Msg("step start")
}

func (h LoggerHook) OnBeforeLLM(_ context.Context, st *State, req ChatRequest) {
	msgTokens, toolTokens := EstimateRequestTokens(req)
	h.L.Info().
		Int("step", st.Step).
		Int("turns", len(req.History)).
		Int("tools", len(req.Tools)).
		Int("est_tokens_messages", msgTokens).
		Int("est_tokens_tools", toolTokens).
		Int("cumulative_tokens", st.Totals.Total).
		Msg("calling model")
}

func (h LoggerHook) OnAfterLLM(_ context.Context, st *State, r LLMResponse) {
	h.L.Info().
		Str("finish", r.FinishReason).
		Int("tool_calls", len(r.ToolCalls)).
		Int("prompt_tokens", r.Usage.Prompt).
		Int("completion_tokens", r.Usage.Completion).
		Int("cumulative_tokens", st.Totals.Total).
		Msg("model responded")
}

func (h LoggerHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	args := zerolog.Dict()
	for k, v := range c.Args {
		// file contents are logged by size only
		if s, ok := v.(string); ok && len(s) > argPreviewLimit {
			args = args.Str(k, units.HumanSize(float64(len(s))))
			continue
		}
		args = args.Interface(k, v)
	}
	h.L.Info().Str("tool", c.Name).Str("call_id", c.ID).Dict("args", args).Msg("tool call")
}

func (h LoggerHook) OnToolResult(_ context.Context, _ *State, c ToolCall, result string, err error) {
	if err != nil {
		h.L.Warn().Str("tool", c.Name).Err(err).Msg("tool failed")
		return
	}
	preview := result
	if len(preview) > resultPreviewLimit {
		preview = preview[:resultPreviewLimit] + "..."
	}
	h.L.Debug().Str("tool", c.Name).Str("size", units.HumanSize(float64(len(result)))).Str("result", preview).Msg("tool result")
}

func (h LoggerHook) OnHistoryChanged(_ context.Context, _ *State) {}

func (h LoggerHook) OnDone(_ context.Context, st *State, o Outcome) {
	var ev *zerolog.Event
	switch o.Kind {
	case OutcomeSummary:
		ev = h.L.Info()
	case OutcomeBudgetExhausted:
		ev = h.L.Warn().Str("reason", o.Reason)
	default:
		ev = h.L.Error().Str("reason", o.Reason)
	}
	ev.Str("session", st.SessionID).
		Str("outcome", string(o.Kind)).
		Int("steps", o.Steps).
		Int("tool_calls", st.ToolCallCount).
		Int("retries", st.Retries).
		Int("tokens", o.Usage.Total).
		Msg("done")
}

func (h LoggerHook) OnRetryAttempt(_ context.Context, _ *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	h.L.Warn().Int("attempt", attempt).Int("max", maxAttempts).Dur("delay", delay).Err(err).Msg("retrying model call")
}

func (h LoggerHook) OnRetryExhausted(_ context.Context, _ *State, err error) {
	h.L.Error().Err(err).Msg("retries exhausted")
}
