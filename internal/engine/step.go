package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// callLLMWithRetry calls the gateway under the retry policy and per-call timeout.
func callLLMWithRetry(ctx context.Context, llm LLMClient, req ChatRequest, hooks Hooks, st *State) (LLMResponse, error) {
	retryConfig := getRetryConfig(req.Options)
	resp, err := RetryLLMCall(
		ctx,
		retryConfig.LLMPolicy,
		llm,
		req,
		req.Options.CallTimeout,
		func(attempt int, delay time.Duration, retryErr error) {
			st.Retries++
			hooks.OnRetryAttempt(ctx, st, attempt, retryConfig.LLMPolicy.MaxRetries, delay, retryErr)
		},
	)
	if err != nil {
		if IsRetryExhausted(err) {
			hooks.OnRetryExhausted(ctx, st, err)
		}
		return LLMResponse{}, err
	}
	return resp, nil
}

// processLLMResponse tracks usage and, for a terminal response, records the summary.
func processLLMResponse(ctx context.Context, resp LLMResponse, st *State, hooks Hooks) error {
	hooks.OnAfterLLM(ctx, st, resp)
	st.Totals.Add(resp.Usage)

	if len(resp.ToolCalls) > 0 {
		return nil
	}

	if err := st.Append(Turn{Role: RoleResponder, Parts: []Part{TextPart{Text: resp.Text}}}); err != nil {
		return err
	}
	st.Summary = resp.Text
	st.Done = true
	hooks.OnHistoryChanged(ctx, st)
	return nil
}

// executeToolCalls dispatches calls one at a time, in the order the model returned
// them. Each call is appended as a responder turn immediately followed by its result
// as a requester turn, so the log stays paired even if ctx is cancelled mid-batch.
func executeToolCalls(ctx context.Context, calls []ToolCall, reg *ToolRegistry, hooks Hooks, st *State) error {
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		if call.Args == nil {
			call.Args = map[string]any{}
		}

		if err := st.Append(Turn{Role: RoleResponder, Parts: []Part{ToolCallPart{Call: call}}}); err != nil {
			return err
		}
		st.ToolCallCount++
		hooks.OnToolCall(ctx, st, call)

		content, err := reg.Dispatch(ctx, call)
		isErr := err != nil
		if err != nil {
			content = ErrorResult(err.Error())
		} else {
			isErr = IsErrorResult(content)
		}

		result := ToolResultPart{CallID: call.ID, Name: call.Name, Content: content, IsError: isErr}
		if err := st.Append(Turn{Role: RoleRequester, Parts: []Part{result}}); err != nil {
			return err
		}
		hooks.OnToolResult(ctx, st, call, content, err)
		hooks.OnHistoryChanged(ctx, st)
	}
	return nil
}

// stepOnce performs one model round-trip and, if tools were requested, dispatches them.
func stepOnce(ctx context.Context, llm LLMClient, reg *ToolRegistry, st *State, hooks Hooks, opts ChatOptions) error {
	hooks.OnStepStart(ctx, st)

	req := ChatRequest{
		Model:             st.Model,
		SystemInstruction: st.SystemInstruction,
		History:           st.Conversation.Turns(),
		Tools:             reg.Schemas(),
		Options:           opts,
	}
	hooks.OnBeforeLLM(ctx, st, req)

	resp, err := callLLMWithRetry(ctx, llm, req, hooks, st)
	if err != nil {
		return WrapWithContext(err, st, "llm_call", "")
	}
	st.Step++

	if err := processLLMResponse(ctx, resp, st, hooks); err != nil {
		return WrapWithContext(err, st, "history", "")
	}
	if st.Done {
		return nil
	}

	if err := executeToolCalls(ctx, resp.ToolCalls, reg, hooks, st); err != nil {
		return WrapWithContext(err, st, "tool_execution", "")
	}
	return nil
}
