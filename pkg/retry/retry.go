// Package retry runs operations with exponential backoff and jitter.
// It is used while bootstrapping connections to PostgreSQL, Redis and NATS,
// which may come up after the API process in a compose/k8s rollout, and when
// forwarding events to the broker.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MARKERS
// ══════════════════════════════════════════════════════════════════════════════

// RetryableError marks an error the default policy will retry.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as retryable. nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries the retryable marker.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// PermanentError stops retrying regardless of the policy.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as final. nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries the permanent marker.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Config is the retry policy.
type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// JitterFactor spreads each delay by ±factor.
	JitterFactor float64

	// RetryIf overrides the default of retrying only RetryableError.
	RetryIf func(error) bool

	// OnRetry runs before each sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig is 3 attempts starting at 100ms, doubling, capped at 30s, with 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// Option adjusts a Config. Out-of-range values are ignored.
type Option func(*Config)

func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.InitialDelay = d
		}
	}
}

func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.MaxDelay = d
		}
	}
}

func WithJitter(j float64) Option {
	return func(c *Config) {
		if j >= 0 && j <= 1 {
			c.JitterFactor = j
		}
	}
}

func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) { c.RetryIf = fn }
}

func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(c *Config) { c.OnRetry = fn }
}

// ══════════════════════════════════════════════════════════════════════════════
// RETRIER
// ══════════════════════════════════════════════════════════════════════════════

// Retrier applies one policy to any number of operations.
type Retrier struct {
	config Config
}

// New creates a Retrier from DefaultConfig plus opts.
func New(opts ...Option) *Retrier {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Retrier{config: cfg}
}

// Do calls operation until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done. Markers are stripped from the returned error.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return unmark(lastErr)
			}
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) || !r.retries(err) || attempt >= r.config.MaxAttempts {
			return unmark(err)
		}

		delay := r.calculateDelay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return unmark(lastErr)
		case <-timer.C:
		}
	}
}

func (r *Retrier) retries(err error) bool {
	if r.config.RetryIf != nil {
		return r.config.RetryIf(err)
	}
	return IsRetryable(err)
}

func unmark(err error) error {
	switch e := err.(type) {
	case *RetryableError:
		return e.Err
	case *PermanentError:
		return e.Err
	}
	return err
}

func (r *Retrier) calculateDelay(attempt int) time.Duration {
	d := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	d = math.Min(d, float64(r.config.MaxDelay))
	if r.config.JitterFactor > 0 {
		d += d * r.config.JitterFactor * (rand.Float64()*2 - 1)
	}
	return time.Duration(math.Max(d, 0))
}

// Do runs operation with a one-off Retrier.
func Do(ctx context.Context, operation func(ctx context.Context) error, opts ...Option) error {
	return New(opts...).Do(ctx, operation)
}

// DoWithData runs operation through r and returns its result.
func DoWithData[T any](ctx context.Context, r *Retrier, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESETS
// ══════════════════════════════════════════════════════════════════════════════

// ConnectRetrier is used for backend connections at startup.
// Every error is retried until the attempts run out or ctx is done.
func ConnectRetrier(attempts int, onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(
		WithMaxAttempts(attempts),
		WithInitialDelay(250*time.Millisecond),
		WithMaxDelay(5*time.Second),
		WithJitter(0.2),
		WithRetryIf(func(error) bool { return true }),
		WithOnRetry(onRetry),
	)
}

// PublishRetrier is used for best-effort event forwarding. Only errors marked
// Retryable are retried.
func PublishRetrier() *Retrier {
	return New(
		WithMaxAttempts(3),
		WithInitialDelay(50*time.Millisecond),
		WithMaxDelay(time.Second),
		WithJitter(0.05),
	)
}
