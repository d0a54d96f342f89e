package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior. The zero value retries nothing; use
// DefaultPolicy for the standard API-call policy.
type Policy struct {
	// Attempts is the total number of calls, including the first. 1 means
	// no retries.
	Attempts int

	// BaseDelay is the sleep before the first retry; each further retry
	// multiplies it by Factor up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Factor    float64

	// Jitter widens each delay by a random fraction in [-Jitter, +Jitter].
	Jitter float64

	// Retryable overrides IsTransient when set.
	Retryable func(err error) bool
}

// DefaultPolicy is the policy the API clients start from.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 300 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Factor:    2.0,
		Jitter:    0.25,
	}
}

// PolicyFromConfig builds a Policy from config values, falling back to the
// defaults for anything unset.
func PolicyFromConfig(attempts, baseDelayMs, maxDelayMs int) Policy {
	p := DefaultPolicy()
	if attempts > 0 {
		p.Attempts = attempts
	}
	if baseDelayMs > 0 {
		p.BaseDelay = time.Duration(baseDelayMs) * time.Millisecond
	}
	if maxDelayMs > 0 {
		p.MaxDelay = time.Duration(maxDelayMs) * time.Millisecond
	}
	return p
}

// Retry calls fn until it succeeds, the error is not retryable, the attempts
// run out, or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == p.Attempts-1 {
			break
		}

		zap.L().Warn("retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func (p Policy) delay(attempt int) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 2.0
	}
	d := float64(p.BaseDelay) * math.Pow(factor, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
