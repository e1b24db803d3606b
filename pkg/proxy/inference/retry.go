package inference

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 4 * time.Second
	DefaultMaxDelay    = 10 * time.Second
)

// RetryPolicy controls how many attempts are made and how long to wait
// between them. Zero fields take the defaults.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	IsRetryable func(Outcome) bool
	// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		IsRetryable: Outcome.IsTransient,
		Sleep:       sleepContext,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	defaults := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaults.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaults.MaxDelay
	}
	if p.IsRetryable == nil {
		p.IsRetryable = defaults.IsRetryable
	}
	if p.Sleep == nil {
		p.Sleep = defaults.Sleep
	}
	return p
}

// Delay returns the wait after the given failed attempt (1-based):
// min(MaxDelay, BaseDelay * 2^(attempt-1)).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

type Retrier struct {
	client Client
	policy RetryPolicy
}

func NewRetrier(client Client, policy RetryPolicy) *Retrier {
	return &Retrier{
		client: client,
		policy: policy.withDefaults(),
	}
}

func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// CallWithRetry returns the first non-retryable outcome, or the last outcome
// once attempts are exhausted. Exhaustion is not an error at this level.
func (r *Retrier) CallWithRetry(ctx context.Context, endpoint Endpoint, payload Payload) Outcome {
	var outcome Outcome

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		outcome = r.client.Call(ctx, endpoint, payload)
		if outcome.IsSuccess() {
			if attempt > 1 {
				slog.Info("inference succeeded after retry", "model", endpoint.Name, "attempt", attempt)
			}
			return outcome
		}

		if !r.policy.IsRetryable(outcome) {
			slog.Warn("inference failed, not retrying", "model", endpoint.Name, "attempt", attempt, "error", outcome.describe())
			return outcome
		}

		if attempt == r.policy.MaxAttempts {
			break
		}

		delay := r.policy.Delay(attempt)
		slog.Warn("inference attempt failed, retrying",
			"model", endpoint.Name,
			"attempt", attempt,
			"maxAttempts", r.policy.MaxAttempts,
			"delay", delay,
			"error", outcome.describe(),
		)

		if err := r.policy.Sleep(ctx, delay); err != nil {
			slog.Warn("retry wait interrupted", "model", endpoint.Name, "error", err)
			return outcome
		}
	}

	slog.Warn("inference attempts exhausted", "model", endpoint.Name, "attempts", r.policy.MaxAttempts, "error", outcome.describe())
	return outcome
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
