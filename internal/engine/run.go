package engine

import (
	"context"
	"errors"
	"fmt"
)

// Run drives the conversation until the model returns a terminal response, the step
// budget is spent, or an unrecoverable error occurs.
//
// The returned Outcome is always populated. The error is non-nil exactly when the
// outcome is OutcomeFailure (gateway error after retries, cancellation, or a broken
// conversation log). Budget exhaustion is reported through the Outcome alone.
//
// A step is one model round-trip, however many tool calls it carries.
func Run(ctx context.Context, llm LLMClient, reg *ToolRegistry, st *State, hooks Hooks, opts ChatOptions) (Outcome, error) {
	st.Step = 0

	for st.Step < st.MaxSteps && !st.Done {
		if err := ctx.Err(); err != nil {
			return fail(ctx, st, hooks, WrapWithContext(fmt.Errorf("execution cancelled: %w", err), st, "cancelled", ""))
		}

		if err := stepOnce(ctx, llm, reg, st, hooks, opts); err != nil {
			return fail(ctx, st, hooks, err)
		}
	}

	var o Outcome
	if st.Done {
		o = st.outcome(OutcomeSummary, "")
		o.Summary = st.Summary
	} else {
		o = st.outcome(OutcomeBudgetExhausted,
			fmt.Sprintf("step budget of %d model round-trips exhausted without a final summary", st.MaxSteps))
	}
	hooks.OnDone(ctx, st, o)
	return o, nil
}

func fail(ctx context.Context, st *State, hooks Hooks, err error) (Outcome, error) {
	o := st.outcome(OutcomeFailure, failureReason(err))
	hooks.OnDone(ctx, st, o)
	return o, err
}

func (s *State) outcome(kind OutcomeKind, reason string) Outcome {
	return Outcome{Kind: kind, Reason: reason, Steps: s.Step, Usage: s.Totals}
}

// failureReason strips the step/op decoration for the human-facing reason.
func failureReason(err error) string {
	var ctxErr *EngineContextError
	if errors.As(err, &ctxErr) && ctxErr.Err != nil {
		return ctxErr.Err.Error()
	}
	return err.Error()
}
