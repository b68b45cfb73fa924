package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

// attempts returns the budget for a call. Purposes listed in
// PurposeAttempts override MaxAttempts.
func (r *RetryProvider) attempts(ctx context.Context) int {
	n := r.config.MaxAttempts
	if v, ok := r.config.PurposeAttempts[PurposeFrom(ctx)]; ok {
		n = v
	}
	return max(n, 1)
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	budget := r.attempts(ctx)
	invalidRetried := false

	var lastErr error
	for attempt := range budget {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == budget-1 || !shouldRetry(err, &invalidRetried) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry reports whether err is worth another attempt. A schema
// violation gets exactly one retry per call.
func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if Permanent(err) {
		return false
	}
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}
	// Rate limits, outages and network errors are transient.
	return true
}

// backoff computes the wait before the next attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))

	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}

// deadlineProvider bounds each call, retries included, by a timeout.
type deadlineProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithDeadline wraps p so each Generate call gives up after timeout. A
// non-positive timeout returns p unchanged.
func WithDeadline(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &deadlineProvider{inner: p, timeout: timeout}
}

func (d *deadlineProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.inner.Generate(ctx, req)
}

func (d *deadlineProvider) ModelID() string {
	return d.inner.ModelID()
}
