package reasoning

import (
	"context"
	"time"
)

// RetryPolicy is the explicit retry configuration for one provider:
// MaxAttempts tries with exponential backoff, starting at BackoffBase and
// capped at BackoffCap.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// DefaultRetryPolicy is two attempts with a 1s base and a 5s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		BackoffBase: time.Second,
		BackoffCap:  5 * time.Second,
	}
}

// Delay returns the backoff before the given retry. attempt is 1-based: the
// delay applied after the attempt-th failure.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BackoffBase << (attempt - 1)
	if p.BackoffCap > 0 && d > p.BackoffCap {
		d = p.BackoffCap
	}
	return d
}

// Sleeper abstracts backoff waits so tests can run without real time.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
