// Package circuitbreaker wraps sony/gobreaker with the functional-option
// configuration used across Engagement Hub. Storage adapters are guarded by a
// breaker so that a failing backend is reported quickly instead of piling up
// requests on a dead connection pool.
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// State represents the current state of the circuit breaker.
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// Common errors.
var (
	// ErrCircuitOpen is returned when the circuit is open and requests are blocked.
	ErrCircuitOpen = gobreaker.ErrOpenState
	// ErrTooManyRequests is returned when too many requests are made in half-open state.
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies this circuit breaker (for logging/metrics).
	Name string

	// FailureThreshold is the number of consecutive failures before opening the circuit.
	// Default: 5
	FailureThreshold uint32

	// HalfOpenRequests is the number of probe requests allowed in half-open
	// state; that many consecutive successes close the circuit again.
	// Default: 1
	HalfOpenRequests uint32

	// Timeout is how long to wait in open state before transitioning to half-open.
	// Default: 30s
	Timeout time.Duration

	// Interval is the cyclic period of the closed state after which counts are cleared.
	// Zero never clears.
	Interval time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(name string, from, to State)

	// IsFailure determines if an error should be counted as a failure.
	// If nil, all non-nil errors except context cancellation are failures.
	IsFailure func(error) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		HalfOpenRequests: 1,
		Timeout:          30 * time.Second,
	}
}

// Option is a functional option for configuring the circuit breaker.
type Option func(*Config)

// WithFailureThreshold sets the failure threshold.
func WithFailureThreshold(n uint32) Option {
	return func(c *Config) {
		if n > 0 {
			c.FailureThreshold = n
		}
	}
}

// WithHalfOpenRequests sets the number of half-open probe requests.
func WithHalfOpenRequests(n uint32) Option {
	return func(c *Config) {
		if n > 0 {
			c.HalfOpenRequests = n
		}
	}
}

// WithTimeout sets the open-state timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithInterval sets the closed-state counter reset interval.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithOnStateChange sets the state change callback.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *Config) {
		c.OnStateChange = fn
	}
}

// WithIsFailure sets the failure classifier.
func WithIsFailure(fn func(error) bool) Option {
	return func(c *Config) {
		c.IsFailure = fn
	}
}

// CircuitBreaker guards calls to an unreliable dependency.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// New creates a circuit breaker with the given name and options.
func New(name string, opts ...Option) *CircuitBreaker {
	cfg := DefaultConfig(name)
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a circuit breaker from an explicit Config.
func NewWithConfig(cfg Config) *CircuitBreaker {
	isFailure := cfg.IsFailure
	if isFailure == nil {
		isFailure = defaultIsFailure
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cfg.OnStateChange,
		IsSuccessful: func(err error) bool {
			return err == nil || !isFailure(err)
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func defaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Execute runs fn if the circuit allows it. When the circuit is open the
// returned error is ErrCircuitOpen (or ErrTooManyRequests in half-open state).
func (b *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// Call runs fn through the breaker and returns its typed result.
func Call[T any](ctx context.Context, b *CircuitBreaker, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := b.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// IsRejected reports whether err was produced by the breaker itself rather than the guarded call.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

// State returns the current state.
func (b *CircuitBreaker) State() State {
	return b.cb.State()
}

// Counts returns the current counters.
func (b *CircuitBreaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}

// Name returns the breaker name.
func (b *CircuitBreaker) Name() string {
	return b.cb.Name()
}

// IsOpen returns true if the circuit is open.
func (b *CircuitBreaker) IsOpen() bool {
	return b.cb.State() == StateOpen
}
