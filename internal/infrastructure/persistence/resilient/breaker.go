// Package resilient guards the relation and content stores with a circuit
// breaker and records per-operation metrics.
//
// A breaker opens after consecutive backend failures; while open, calls fail
// fast with an error matching shared.ErrStoreUnavailable. Domain outcomes such
// as not found or a rejected self-subscription never count as failures.
package resilient

import (
	"context"
	"errors"
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/metrics"
	"github.com/streamhub/engagement-hub/pkg/circuitbreaker"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// Options configures a guarded store.
type Options struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	Logger *logger.Logger
}

// DefaultOptions returns 5 failures and a 30s open timeout.
func DefaultOptions() Options {
	return Options{Failures: 5, OpenTimeout: 30 * time.Second}
}

// isFailure reports whether err means the backend is unhealthy.
func isFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return shared.IsStoreUnavailable(err)
	}
	return true
}

func newBreaker(name string, opts Options) *circuitbreaker.CircuitBreaker {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("breaker"), logger.String("breaker", name))
	metrics.RecordBreakerState(name, int(circuitbreaker.StateClosed))

	return circuitbreaker.New(
		name,
		circuitbreaker.WithFailureThreshold(opts.Failures),
		circuitbreaker.WithTimeout(opts.OpenTimeout),
		circuitbreaker.WithHalfOpenRequests(1),
		circuitbreaker.WithIsFailure(isFailure),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			metrics.RecordBreakerState(name, int(to))
			if to == circuitbreaker.StateOpen {
				log.Warn("circuit opened", logger.String("from", from.String()))
				return
			}
			log.Info("circuit state changed",
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
	)
}

// guard runs fn through the breaker, timing it under store/op.
func guard[T any](ctx context.Context, b *circuitbreaker.CircuitBreaker, store, op string, fn func(context.Context) (T, error)) (T, error) {
	done := metrics.ObserveStore(store, op)
	out, err := circuitbreaker.Call(ctx, b, fn)
	done(err)
	if err != nil {
		if circuitbreaker.IsRejected(err) {
			return out, shared.WrapError(store, op, shared.ErrStoreUnavailable, "circuit open", err)
		}
		return out, shared.StoreError(store, op, err)
	}
	return out, nil
}
