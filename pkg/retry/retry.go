// Package retry provides the fetch resilience policy: unbounded jittered
// backoff with a per-attempt timeout and cooperative cancellation.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default policy configuration constants.
const (
	defaultInterval       = 30 * time.Second
	defaultAttemptTimeout = time.Minute
	defaultJitter         = 0.5
)

// Policy describes how an operation is retried. Attempts are unbounded;
// only the caller's context ends the loop for retryable failures.
type Policy struct {
	interval       time.Duration
	attemptTimeout time.Duration
	jitter         float64
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithInterval sets the base delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithAttemptTimeout bounds the wall-clock time of a single attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.attemptTimeout = d
		}
	}
}

// WithJitter sets the randomization factor applied to the delay, 0..1.
func WithJitter(f float64) Option {
	return func(p *Policy) {
		if f >= 0 && f <= 1 {
			p.jitter = f
		}
	}
}

// NewPolicy creates a Policy with defaults applied.
func NewPolicy(opts ...Option) Policy {
	p := Policy{
		interval:       defaultInterval,
		attemptTimeout: defaultAttemptTimeout,
		jitter:         defaultJitter,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Permanent marks err as non-retryable: Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, or ctx is
// cancelled. Each attempt runs under its own timeout derived from ctx.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval
	b.RandomizationFactor = p.jitter
	b.Multiplier = 1 // fixed delay; jitter supplies the spread
	b.MaxInterval = p.interval
	b.MaxElapsedTime = 0 // retry until cancelled

	attempt := func() error {
		actx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
		defer cancel()
		return op(actx)
	}
	return backoff.Retry(attempt, backoff.WithContext(b, ctx))
}
