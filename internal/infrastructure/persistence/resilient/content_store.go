package resilient

import (
	"context"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/pkg/circuitbreaker"
)

const contentStore = "content"

// ContentStore wraps a content.Store with a breaker.
type ContentStore struct {
	next    content.Store
	breaker *circuitbreaker.CircuitBreaker
}

var _ content.Store = (*ContentStore)(nil)

// NewContentStore wraps next.
func NewContentStore(next content.Store, opts Options) *ContentStore {
	return &ContentStore{next: next, breaker: newBreaker("content-store", opts)}
}

// Breaker exposes the underlying breaker for health reporting.
func (s *ContentStore) Breaker() *circuitbreaker.CircuitBreaker { return s.breaker }

func (s *ContentStore) GetByID(ctx context.Context, kind content.Kind, id string) (content.Item, error) {
	return guard(ctx, s.breaker, contentStore, "GetByID", func(ctx context.Context) (content.Item, error) {
		return s.next.GetByID(ctx, kind, id)
	})
}

func (s *ContentStore) GetByIDs(ctx context.Context, kind content.Kind, ids []string) (map[string]content.Item, error) {
	return guard(ctx, s.breaker, contentStore, "GetByIDs", func(ctx context.Context) (map[string]content.Item, error) {
		return s.next.GetByIDs(ctx, kind, ids)
	})
}

func (s *ContentStore) Exists(ctx context.Context, kind content.Kind, id string) (bool, error) {
	return guard(ctx, s.breaker, contentStore, "Exists", func(ctx context.Context) (bool, error) {
		return s.next.Exists(ctx, kind, id)
	})
}

func (s *ContentStore) Query(ctx context.Context, q content.Query) ([]content.Item, error) {
	return guard(ctx, s.breaker, contentStore, "Query", func(ctx context.Context) ([]content.Item, error) {
		return s.next.Query(ctx, q)
	})
}

func (s *ContentStore) Count(ctx context.Context, kind content.Kind, filter content.Filter) (int64, error) {
	return guard(ctx, s.breaker, contentStore, "Count", func(ctx context.Context) (int64, error) {
		return s.next.Count(ctx, kind, filter)
	})
}
