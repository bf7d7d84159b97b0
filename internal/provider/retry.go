package provider

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Cyclone1070/vics/internal/tool"
)

// RetryPolicy configures retry behaviour with exponential backoff.
type RetryPolicy struct {
	MaxAttempts int // total attempts including the first
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool // scale each delay by a random factor in [0.5, 1.5)
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2,
		Jitter:      true,
	}
}

// Delay returns the wait before retry number attempt (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 {
		delay = math.Min(delay, float64(p.MaxDelay))
	}
	if p.Jitter {
		delay *= 0.5 + rand.Float64()
	}
	return time.Duration(delay)
}

// retryAdapter decorates an Adapter with per-request timeouts and retries.
type retryAdapter struct {
	next    Adapter
	policy  RetryPolicy
	timeout time.Duration
	logger  *slog.Logger

	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps next so every Send attempt is bounded by requestTimeout and
// retryable failures are retried per policy. A RetryAfter hint from the
// provider replaces the computed delay; a hint beyond MaxDelay ends the
// retries and returns the provider's error.
func WithRetry(next Adapter, policy RetryPolicy, requestTimeout time.Duration, logger *slog.Logger) Adapter {
	if next == nil {
		panic("adapter is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &retryAdapter{next: next, policy: policy, timeout: requestTimeout, logger: logger, sleep: sleepCtx}
}

func (r *retryAdapter) Name() string {
	return r.next.Name()
}

func (r *retryAdapter) Send(ctx context.Context, conv []Message, specs []tool.Declaration) (*Message, error) {
	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.policy.Delay(attempt - 1)
			var pe *Error
			if errors.As(lastErr, &pe) && pe.RetryAfter > 0 {
				if r.policy.MaxDelay > 0 && pe.RetryAfter > r.policy.MaxDelay {
					r.logger.Warn("provider asked to wait longer than the retry limit",
						"provider", r.next.Name(), "retry_after", pe.RetryAfter, "max_delay", r.policy.MaxDelay)
					return nil, lastErr
				}
				delay = pe.RetryAfter
			}
			r.logger.Warn("retrying provider request",
				"provider", r.next.Name(), "attempt", attempt+1, "delay", delay, "error", lastErr)
			if err := r.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		msg, err := r.attempt(ctx, conv, specs)
		if err == nil {
			return msg, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *retryAdapter) attempt(ctx context.Context, conv []Message, specs []tool.Declaration) (*Message, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	msg, err := r.next.Send(ctx, conv, specs)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && KindOf(err) == "" {
		err = NewError(r.next.Name(), KindTimeout, "request timed out", err)
	}
	return msg, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
