package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/memory"
	"github.com/streamhub/engagement-hub/pkg/circuitbreaker"
)

func testOptions() Options {
	return Options{Failures: 3, OpenTimeout: time.Hour}
}

func key() relation.Key {
	return relation.Key{
		ActorID:  shared.GenerateID().String(),
		TargetID: shared.GenerateID().String(),
		Kind:     relation.KindVideoLike,
	}
}

func TestRelationStore_PassesThrough(t *testing.T) {
	inner := memory.NewRelationStore()
	s := NewRelationStore(inner, testOptions())
	ctx := context.Background()
	k := key()

	created, err := s.InsertIfAbsent(ctx, k)
	require.NoError(t, err)
	assert.True(t, created)

	n, err := s.CountByTarget(ctx, k.TargetID, k.Kind)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	deleted, err := s.DeleteIfPresent(ctx, k)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRelationStore_OpensAfterFailuresAndFailsFast(t *testing.T) {
	inner := memory.NewRelationStore()
	s := NewRelationStore(inner, testOptions())
	ctx := context.Background()
	inner.SetFail(errors.New("connection refused"))

	for i := 0; i < 3; i++ {
		_, err := s.Exists(ctx, key())
		require.Error(t, err)
		assert.True(t, shared.IsStoreUnavailable(err))
	}
	assert.True(t, s.Breaker().IsOpen())

	// Backend recovered, but the open breaker rejects without calling it.
	inner.SetFail(nil)
	_, err := s.CountByTargets(ctx, []string{"a"}, relation.KindVideoLike)
	require.Error(t, err)
	assert.True(t, shared.IsStoreUnavailable(err))
	assert.True(t, circuitbreaker.IsRejected(err))
	assert.Equal(t, int64(0), inner.CountCalls.Load())
}

func TestRelationStore_DomainErrorsDoNotTrip(t *testing.T) {
	inner := memory.NewRelationStore()
	s := NewRelationStore(inner, testOptions())
	inner.SetFail(shared.ErrSelfSubscription)

	for i := 0; i < 10; i++ {
		_, err := s.InsertIfAbsent(context.Background(), key())
		assert.ErrorIs(t, err, shared.ErrSelfRelationForbidden)
	}
	assert.Equal(t, circuitbreaker.StateClosed, s.Breaker().State())
}

func TestContentStore_NotFoundIsNotAFailure(t *testing.T) {
	rs := memory.NewRelationStore()
	s := NewContentStore(memory.NewContentStore(rs), testOptions())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.GetByID(ctx, content.KindVideo, shared.GenerateID().String())
		assert.True(t, shared.IsNotFound(err))
		assert.False(t, shared.IsStoreUnavailable(err))
	}
	assert.Equal(t, circuitbreaker.StateClosed, s.Breaker().State())
}

func TestContentStore_BackendFailureIsStoreUnavailable(t *testing.T) {
	rs := memory.NewRelationStore()
	inner := memory.NewContentStore(rs)
	s := NewContentStore(inner, testOptions())
	inner.SetFail(errors.New("timeout"))

	_, err := s.Count(context.Background(), content.KindVideo, content.Filter{})
	require.Error(t, err)
	assert.True(t, shared.IsStoreUnavailable(err))
}

func TestContentStore_GetByIDsPassesThrough(t *testing.T) {
	inner := memory.NewContentStore(memory.NewRelationStore())
	id := shared.GenerateID().String()
	require.NoError(t, inner.SaveChannel(context.Background(), &content.Channel{ID: id, Username: "alice"}))
	s := NewContentStore(inner, testOptions())

	got, err := s.GetByIDs(context.Background(), content.KindChannel, []string{id})
	require.NoError(t, err)
	assert.Equal(t, "alice", got[id].(*content.Channel).Username)
	assert.Equal(t, int64(1), inner.GetByIDsCalls.Load())
}

func TestIsFailure(t *testing.T) {
	assert.False(t, isFailure(context.Canceled))
	assert.False(t, isFailure(shared.ErrContentNotFound))
	assert.True(t, isFailure(shared.StoreError("relation", "Exists", errors.New("x"))))
	assert.True(t, isFailure(errors.New("io")))
}
