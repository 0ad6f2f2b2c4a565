package engine

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestRetryWithPolicy_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	var retried []int
	out, err := RetryWithPolicy(context.Background(), testPolicy(3),
		func(context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("503")
			}
			return "ok", nil
		},
		func(error) RetryClass { return RetryClassRetryable },
		func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) },
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryWithPolicy_NonRetryableReturnsImmediately(t *testing.T) {
	attempts := 0
	sentinel := errors.New("bad request")
	_, err := RetryWithPolicy(context.Background(), testPolicy(3),
		func(context.Context) (int, error) { attempts++; return 0, sentinel },
		func(error) RetryClass { return RetryClassNonRetryable },
		nil,
	)
	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, attempts)
	assert.False(t, IsRetryExhausted(err))
}

func TestRetryWithPolicy_Exhausted(t *testing.T) {
	attempts := 0
	_, err := RetryWithPolicy(context.Background(), testPolicy(2),
		func(context.Context) (int, error) { attempts++; return 0, errors.New("503") },
		func(error) RetryClass { return RetryClassRetryable },
		nil,
	)
	require.True(t, IsRetryExhausted(err))
	assert.Equal(t, 3, attempts)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.False(t, exhausted.IsGuarded)
}

func TestRetryWithPolicy_MaybeIsGuarded(t *testing.T) {
	attempts := 0
	_, err := RetryWithPolicy(context.Background(), testPolicy(5),
		func(context.Context) (int, error) { attempts++; return 0, errors.New("deadline exceeded") },
		func(error) RetryClass { return RetryClassMaybe },
		nil,
	)
	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.True(t, exhausted.IsGuarded)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithPolicy_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}
	_, err := RetryWithPolicy(ctx, policy,
		func(context.Context) (int, error) { return 0, errors.New("503") },
		func(error) RetryClass { return RetryClassRetryable },
		func(int, time.Duration, error) { cancel() },
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}
	plain := errors.New("x")

	assert.Equal(t, time.Second, calculateDelay(policy, 0, plain))
	assert.Equal(t, 2*time.Second, calculateDelay(policy, 1, plain))
	assert.Equal(t, 4*time.Second, calculateDelay(policy, 2, plain))
	assert.Equal(t, 5*time.Second, calculateDelay(policy, 3, plain))

	withHeader := WrapLLMError(errors.New("429 rate limit"), http.StatusTooManyRequests, "3")
	assert.Equal(t, 3*time.Second, calculateDelay(policy, 0, withHeader))

	capped := WrapLLMError(errors.New("429 rate limit"), http.StatusTooManyRequests, "60")
	assert.Equal(t, 5*time.Second, calculateDelay(policy, 0, capped))

	policy.Jitter = true
	d := calculateDelay(policy, 0, plain)
	assert.GreaterOrEqual(t, d, time.Second)
	assert.LessOrEqual(t, d, 1200*time.Millisecond)
}

type blockingLLM struct{ calls int }

func (b *blockingLLM) Chat(ctx context.Context, _ ChatRequest) (LLMResponse, error) {
	b.calls++
	<-ctx.Done()
	return LLMResponse{}, ctx.Err()
}

func TestChatWithTimeout(t *testing.T) {
	llm := &blockingLLM{}
	_, err := chatWithTimeout(context.Background(), llm, ChatRequest{}, 5*time.Millisecond)

	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.True(t, engineErr.IsTimeout)
	assert.Equal(t, RetryClassRetryable, engineErr.Class)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryLLMCall_ParentCancelIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &blockingLLM{}
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := RetryLLMCall(ctx, testPolicy(3), llm, ChatRequest{}, time.Minute, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsRetryExhausted(err))
	assert.Equal(t, 1, llm.calls)
}
