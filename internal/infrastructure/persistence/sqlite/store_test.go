package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/application/command"
	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "engagement.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedChannel(t *testing.T, contents *ContentStore, username string) string {
	t.Helper()
	id := shared.GenerateID().String()
	require.NoError(t, contents.SaveChannel(context.Background(), &content.Channel{
		ID: id, Username: username, FullName: username, CreatedAt: time.Now(),
	}))
	return id
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ", time.Second)
	assert.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engagement.db")
	first, err := Open(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, time.Second)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.sqlDB.QueryRow("SELECT COUNT(*) FROM "+migrationTable).Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestRelationStore_InsertDeleteAndCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	relations := store.Relations()
	contents := store.Contents()

	a := seedChannel(t, contents, "alice")
	b := seedChannel(t, contents, "bob")
	c := seedChannel(t, contents, "carol")
	key := relation.Key{ActorID: a, TargetID: b, Kind: relation.KindSubscription}

	created, err := relations.InsertIfAbsent(ctx, key)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = relations.InsertIfAbsent(ctx, key)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = relations.InsertIfAbsent(ctx, relation.Key{ActorID: c, TargetID: b, Kind: relation.KindSubscription})
	require.NoError(t, err)

	exists, err := relations.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	counts, err := relations.CountByTargets(ctx, []string{a, b, c}, relation.KindSubscription)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{a: 0, b: 2, c: 0}, counts)

	held, err := relations.ActorHasRelation(ctx, a, []string{b, c}, relation.KindSubscription)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{b: {}}, held)

	other, err := relations.CountByTarget(ctx, b, relation.KindVideoLike)
	require.NoError(t, err)
	assert.Zero(t, other)

	deleted, err := relations.DeleteIfPresent(ctx, key)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = relations.DeleteIfPresent(ctx, key)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRelationStore_SelfSubscriptionRejectedBySchema(t *testing.T) {
	store := openTestStore(t)
	a := seedChannel(t, store.Contents(), "alice")

	_, err := store.Relations().InsertIfAbsent(context.Background(),
		relation.Key{ActorID: a, TargetID: a, Kind: relation.KindSubscription})
	assert.ErrorIs(t, err, shared.ErrSelfRelationForbidden)

	n, err := store.Relations().CountByTarget(context.Background(), a, relation.KindSubscription)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelationStore_EmptyBatches(t *testing.T) {
	store := openTestStore(t)
	counts, err := store.Relations().CountByTargets(context.Background(), nil, relation.KindVideoLike)
	require.NoError(t, err)
	assert.Empty(t, counts)

	held, err := store.Relations().ActorHasRelation(context.Background(), "a", nil, relation.KindVideoLike)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestConcurrentToggles_LeaveAtMostOneRelation(t *testing.T) {
	store := openTestStore(t)
	relations := store.Relations()
	contents := store.Contents()
	a := seedChannel(t, contents, "alice")
	b := seedChannel(t, contents, "bob")

	toggle := command.NewToggleRelationHandler(relations, contents, nil, nil)

	const n = 24
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := toggle.Handle(context.Background(), command.ToggleRelationCommand{
				ActorID: a, TargetID: b, Kind: relation.KindSubscription,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := relations.CountByTarget(context.Background(), b, relation.KindSubscription)
	require.NoError(t, err)
	assert.Contains(t, []int64{0, 1}, count)
}

func TestContentStore_QueryAndCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	contents := store.Contents()
	relations := store.Relations()

	owner := seedChannel(t, contents, "owner")
	fan := seedChannel(t, contents, "fan")
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 15)
	for i := range ids {
		ids[i] = shared.GenerateID().String()
		require.NoError(t, contents.SaveVideo(ctx, &content.Video{
			ID:          ids[i],
			OwnerID:     owner,
			Title:       fmt.Sprintf("Video %02d", i),
			Duration:    float64(i),
			Views:       int64(i % 3),
			IsPublished: true,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base,
		}))
	}
	_, err := relations.InsertIfAbsent(ctx, relation.Key{ActorID: fan, TargetID: ids[7], Kind: relation.KindVideoLike})
	require.NoError(t, err)

	total, err := contents.Count(ctx, content.KindVideo, content.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)

	page2, err := contents.Query(ctx, content.Query{
		Kind: content.KindVideo, Sort: content.ColumnCreatedAt, Direction: shared.SortDesc, Skip: 10, Take: 10,
	})
	require.NoError(t, err)
	require.Len(t, page2, 5)
	assert.Equal(t, ids[4], page2[0].ItemID())
	assert.Equal(t, base.Add(4*time.Minute), page2[0].ItemCreatedAt())

	// views repeat every third video; the id tie-break keeps pages disjoint.
	seen := map[string]bool{}
	for skip := 0; skip < 15; skip += 4 {
		page, err := contents.Query(ctx, content.Query{
			Kind: content.KindVideo, Sort: content.ColumnViews, Direction: shared.SortAsc, Skip: skip, Take: 4,
		})
		require.NoError(t, err)
		for _, it := range page {
			assert.False(t, seen[it.ItemID()], "duplicate %s", it.ItemID())
			seen[it.ItemID()] = true
		}
	}
	assert.Len(t, seen, 15)

	liked, err := contents.Count(ctx, content.KindVideo, content.Filter{LikedBy: fan})
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked)

	search, err := contents.Count(ctx, content.KindVideo, content.Filter{Search: "video 1"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), search)
}

func TestContentStore_GetByIDAndExists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	contents := store.Contents()
	owner := seedChannel(t, contents, "owner")

	videoID := shared.GenerateID().String()
	require.NoError(t, contents.SaveVideo(ctx, &content.Video{
		ID: videoID, OwnerID: owner, Title: "draft", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	item, err := contents.GetByID(ctx, content.KindVideo, videoID)
	require.NoError(t, err)
	video := item.(*content.Video)
	assert.False(t, video.IsPublished)

	exists, err := contents.Exists(ctx, content.KindComment, videoID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = contents.GetByID(ctx, content.KindChannel, shared.GenerateID().String())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	commentID := shared.GenerateID().String()
	require.NoError(t, contents.SaveComment(ctx, &content.Comment{
		ID: commentID, OwnerID: owner, VideoID: videoID, Content: "hi", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	comments, err := contents.Query(ctx, content.Query{
		Kind: content.KindComment, Filter: content.Filter{VideoID: videoID}, Direction: shared.SortDesc, Take: 10,
	})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hi", comments[0].(*content.Comment).Content)
}

func TestContentStore_DuplicateUsername(t *testing.T) {
	store := openTestStore(t)
	seedChannel(t, store.Contents(), "alice")
	err := store.Contents().SaveChannel(context.Background(), &content.Channel{
		ID: shared.GenerateID().String(), Username: "alice", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestContentStore_GetByIDs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	contents := store.Contents()
	alice := seedChannel(t, contents, "alice")
	bob := seedChannel(t, contents, "bob")
	missing := shared.GenerateID().String()

	got, err := contents.GetByIDs(ctx, content.KindChannel, []string{alice, bob, missing})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[alice].(*content.Channel).Username)
	assert.Equal(t, "bob", got[bob].(*content.Channel).Username)
	assert.NotContains(t, got, missing)

	empty, err := contents.GetByIDs(ctx, content.KindChannel, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
