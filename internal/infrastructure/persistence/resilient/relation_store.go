package resilient

import (
	"context"

	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/pkg/circuitbreaker"
)

const relationStore = "relation"

// RelationStore wraps a relation.Store with a breaker.
type RelationStore struct {
	next    relation.Store
	breaker *circuitbreaker.CircuitBreaker
}

var _ relation.Store = (*RelationStore)(nil)

// NewRelationStore wraps next.
func NewRelationStore(next relation.Store, opts Options) *RelationStore {
	return &RelationStore{next: next, breaker: newBreaker("relation-store", opts)}
}

// Breaker exposes the underlying breaker for health reporting.
func (s *RelationStore) Breaker() *circuitbreaker.CircuitBreaker { return s.breaker }

func (s *RelationStore) Exists(ctx context.Context, key relation.Key) (bool, error) {
	return guard(ctx, s.breaker, relationStore, "Exists", func(ctx context.Context) (bool, error) {
		return s.next.Exists(ctx, key)
	})
}

func (s *RelationStore) InsertIfAbsent(ctx context.Context, key relation.Key) (bool, error) {
	return guard(ctx, s.breaker, relationStore, "InsertIfAbsent", func(ctx context.Context) (bool, error) {
		return s.next.InsertIfAbsent(ctx, key)
	})
}

func (s *RelationStore) DeleteIfPresent(ctx context.Context, key relation.Key) (bool, error) {
	return guard(ctx, s.breaker, relationStore, "DeleteIfPresent", func(ctx context.Context) (bool, error) {
		return s.next.DeleteIfPresent(ctx, key)
	})
}

func (s *RelationStore) CountByTarget(ctx context.Context, targetID string, kind relation.Kind) (int64, error) {
	return guard(ctx, s.breaker, relationStore, "CountByTarget", func(ctx context.Context) (int64, error) {
		return s.next.CountByTarget(ctx, targetID, kind)
	})
}

func (s *RelationStore) CountByTargets(ctx context.Context, targetIDs []string, kind relation.Kind) (map[string]int64, error) {
	return guard(ctx, s.breaker, relationStore, "CountByTargets", func(ctx context.Context) (map[string]int64, error) {
		return s.next.CountByTargets(ctx, targetIDs, kind)
	})
}

func (s *RelationStore) ActorHasRelation(ctx context.Context, actorID string, targetIDs []string, kind relation.Kind) (map[string]struct{}, error) {
	return guard(ctx, s.breaker, relationStore, "ActorHasRelation", func(ctx context.Context) (map[string]struct{}, error) {
		return s.next.ActorHasRelation(ctx, actorID, targetIDs, kind)
	})
}
