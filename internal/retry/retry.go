// Package retry implements the exponential-backoff policy used by every
// outbound call to an external service (§6.3): base delay, multiplier, cap,
// and a maximum attempt count. Generalized from the teacher's
// downloadFileFromURL backoff ladder in processor.go and the RetryDelayFunc
// shape asynq itself uses in internal/queue/consumer.go.
package retry

import (
	"context"
	"time"
)

// Policy describes an exponential-backoff retry schedule.
type Policy struct {
	Base       time.Duration
	Multiplier float64
	Cap        time.Duration
	MaxAttempts int
}

// Default is the §6.3 SSO/candidate-data retry policy: base 1s, x2, cap 60s,
// max 3 attempts.
var Default = Policy{Base: time.Second, Multiplier: 2, Cap: 60 * time.Second, MaxAttempts: 3}

// Delay returns the backoff delay after failed attempt n (1-indexed), i.e.
// before attempt n+1: Base for n=1, times Multiplier per later attempt,
// capped at Cap.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.Base)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}
	delay := time.Duration(d)
	if delay > p.Cap {
		delay = p.Cap
	}
	return delay
}

// IsRetryable classifies an error as transport-level (worth retrying) vs.
// a hard failure. Callers that already know the failure class should skip
// this and retry directly; this exists for generic wrapping of fn().
type IsRetryable func(err error) bool

// AlwaysRetryable retries on any non-nil error.
func AlwaysRetryable(err error) bool { return err != nil }

// Do runs fn up to policy.MaxAttempts times, sleeping the backoff delay
// between attempts, stopping early if the context is cancelled or
// retryable returns false. Returns the last error on exhaustion.
func Do(ctx context.Context, policy Policy, retryable IsRetryable, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Delay(attempt)):
		}
	}
	return lastErr
}
