package query

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

func newFeed(w *world) *AssembleFeedHandler {
	return NewAssembleFeedHandler(w.contents, w.views, prefixResolver{}, nil)
}

func TestAssembleFeed_SecondPageOfFifteen(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	ids := w.videos(t, owner, 15)
	w.relate(t, owner, ids[4], relation.KindVideoLike)

	env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{
		Kind: "videos", Page: 2, Limit: 10, ViewerID: owner,
	})
	require.NoError(t, err)

	assert.Len(t, env.Items, 5)
	assert.Equal(t, int64(15), env.TotalCount)
	assert.Equal(t, 2, env.Page)
	assert.Equal(t, 10, env.Limit)
	assert.Equal(t, shared.SortDesc, env.SortDirection)
	assert.False(t, env.HasMore)

	// createdAt desc: page 2 holds the five oldest videos.
	got := make([]string, len(env.Items))
	for i, it := range env.Items {
		got[i] = it.ID
		require.NotNil(t, it.Engagement.ViewerHasRelation)
		assert.Contains(t, it.Video.ThumbnailURL, "https://cdn.test/thumbs/")
	}
	assert.Equal(t, []string{ids[4], ids[3], ids[2], ids[1], ids[0]}, got)
	assert.Equal(t, int64(1), env.Items[0].Engagement.RelationCount)
	assert.True(t, *env.Items[0].Engagement.ViewerHasRelation)
}

func TestAssembleFeed_PagesAreStableAndDisjoint(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	ids := w.videos(t, owner, 9)
	// Identical sort keys force the id tie-breaker.
	for _, id := range ids {
		v, err := w.contents.GetByID(context.Background(), content.KindVideo, id)
		require.NoError(t, err)
		video := v.(*content.Video)
		video.Views = 7
		require.NoError(t, w.contents.SaveVideo(context.Background(), video))
	}

	feed := newFeed(w)
	seen := map[string]int{}
	var order []string
	for page := 1; page <= 4; page++ {
		env, err := feed.Handle(context.Background(), AssembleFeedQuery{
			Kind: "videos", Page: page, Limit: 4, SortField: "views", Direction: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(9), env.TotalCount)
		for _, it := range env.Items {
			seen[it.ID]++
			order = append(order, it.ID)
		}
	}

	assert.Len(t, seen, 9)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
	assert.IsIncreasing(t, order)

	again, err := feed.Handle(context.Background(), AssembleFeedQuery{
		Kind: "videos", Page: 2, Limit: 4, SortField: "views", Direction: "asc",
	})
	require.NoError(t, err)
	for i, it := range again.Items {
		assert.Equal(t, order[4+i], it.ID)
	}
}

func TestAssembleFeed_PageBeyondEnd(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	w.videos(t, owner, 3)

	env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, env.Items)
	assert.NotNil(t, env.Items)
	assert.Equal(t, int64(3), env.TotalCount)
}

func TestAssembleFeed_Validation(t *testing.T) {
	w := newWorld()
	feed := newFeed(w)

	tests := []struct {
		name string
		q    AssembleFeedQuery
		want error
	}{
		{"page zero", AssembleFeedQuery{Kind: "videos", Page: 0, Limit: 10}, shared.ErrInvalidPagination},
		{"limit zero", AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 0}, shared.ErrInvalidPagination},
		{"unknown sort", AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 10, SortField: "owner"}, shared.ErrInvalidSortField},
		{"comment sorted by views", AssembleFeedQuery{Kind: "comments", Page: 1, Limit: 10, SortField: "views"}, shared.ErrInvalidSortField},
		{"bad direction", AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 10, Direction: "up"}, shared.ErrInvalidDirection},
		{"unknown kind", AssembleFeedQuery{Kind: "playlists", Page: 1, Limit: 10}, shared.ErrUnknownContentKind},
		{"comments need a video", AssembleFeedQuery{Kind: "comments", Page: 1, Limit: 10}, shared.ErrMissingFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := feed.Handle(context.Background(), tt.q)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, shared.IsValidation(err))
		})
	}
	assert.Equal(t, int64(0), w.relations.CountCalls.Load())
}

func TestAssembleFeed_LimitIsCapped(t *testing.T) {
	w := newWorld()
	env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, shared.MaxPageSize, env.Limit)
}

func TestAssembleFeed_LikedVideos(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	fan := w.channel(t, "fan")
	ids := w.videos(t, owner, 4)
	w.relate(t, fan, ids[1], relation.KindVideoLike)
	w.relate(t, fan, ids[3], relation.KindVideoLike)

	env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{
		Kind: "videos", Page: 1, Limit: 10, Filter: content.Filter{LikedBy: fan}, ViewerID: fan, Direction: "dsc",
	})
	require.NoError(t, err)
	require.Len(t, env.Items, 2)
	assert.Equal(t, ids[3], env.Items[0].ID)
	assert.Equal(t, ids[1], env.Items[1].ID)
	for _, it := range env.Items {
		assert.True(t, *it.Engagement.ViewerHasRelation)
	}
}

func TestAssembleFeed_DraftsVisibleOnlyToOwner(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	ids := w.videos(t, owner, 2)
	v, err := w.contents.GetByID(context.Background(), content.KindVideo, ids[0])
	require.NoError(t, err)
	draft := v.(*content.Video)
	draft.IsPublished = false
	require.NoError(t, w.contents.SaveVideo(context.Background(), draft))

	feed := newFeed(w)
	public, err := feed.Handle(context.Background(), AssembleFeedQuery{
		Kind: "videos", Page: 1, Limit: 10, Filter: content.Filter{OwnerID: owner},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), public.TotalCount)

	mine, err := feed.Handle(context.Background(), AssembleFeedQuery{
		Kind: "videos", Page: 1, Limit: 10, Filter: content.Filter{OwnerID: owner}, ViewerID: owner,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.TotalCount)
}

func TestAssembleFeed_ChannelSubscriptions(t *testing.T) {
	w := newWorld()
	alice := w.channel(t, "alice")
	bob := w.channel(t, "bob")
	carol := w.channel(t, "carol")
	w.relate(t, alice, bob, relation.KindSubscription)
	w.relate(t, alice, carol, relation.KindSubscription)
	w.relate(t, carol, bob, relation.KindSubscription)

	feed := newFeed(w)

	subscribed, err := feed.Handle(context.Background(), AssembleFeedQuery{
		Kind: "channels", Page: 1, Limit: 10, SortField: "username", Direction: "asc",
		Filter: content.Filter{SubscribedBy: alice}, ViewerID: carol,
	})
	require.NoError(t, err)
	require.Len(t, subscribed.Items, 2)
	assert.Equal(t, "bob", subscribed.Items[0].Channel.Username)
	assert.Equal(t, int64(2), subscribed.Items[0].Engagement.RelationCount)
	assert.True(t, *subscribed.Items[0].Engagement.ViewerHasRelation)
	assert.Equal(t, "carol", subscribed.Items[1].Channel.Username)
	assert.False(t, *subscribed.Items[1].Engagement.ViewerHasRelation)
	assert.Equal(t, "https://cdn.test/avatars/bob.png", subscribed.Items[0].Channel.AvatarURL)

	subscribers, err := feed.Handle(context.Background(), AssembleFeedQuery{
		Kind: "channels", Page: 1, Limit: 10, Filter: content.Filter{SubscribersOf: bob},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), subscribers.TotalCount)
}

func TestAssembleFeed_StoreFailurePropagates(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	w.videos(t, owner, 2)
	w.relations.SetFail(errors.New("pool exhausted"))

	_, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 10})
	require.Error(t, err)
	assert.True(t, shared.IsStoreUnavailable(err))

	w.relations.SetFail(nil)
	w.contents.SetFail(errors.New("pool exhausted"))
	_, err = newFeed(w).Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 10})
	assert.True(t, shared.IsStoreUnavailable(err))
}

func TestAssembleFeed_EmbedsOwnersWithOneLookupPerPage(t *testing.T) {
	w := newWorld()
	alice := w.channel(t, "alice")
	bob := w.channel(t, "bob")
	w.videos(t, alice, 3)
	w.videos(t, bob, 2)

	feed := newFeed(w)
	env, err := feed.Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, env.Items, 5)
	assert.Equal(t, int64(1), w.contents.GetByIDsCalls.Load())

	byOwner := map[string]string{alice: "alice", bob: "bob"}
	for _, it := range env.Items {
		require.NotNil(t, it.Video.Owner)
		assert.Equal(t, byOwner[it.Video.OwnerID], it.Video.Owner.Username)
		assert.Equal(t, "https://cdn.test/avatars/"+it.Video.Owner.Username+".png", it.Video.Owner.AvatarURL)
	}

	_, err = feed.Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), w.contents.GetByIDsCalls.Load())
}

func TestAssembleFeed_CommentOwners(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	fan := w.channel(t, "fan")
	ids := w.videos(t, owner, 1)
	for i, author := range []string{fan, fan, owner} {
		require.NoError(t, w.contents.SaveComment(context.Background(), &content.Comment{
			ID: shared.GenerateID().String(), OwnerID: author, VideoID: ids[0],
			Content: "hi", CreatedAt: w.base.Add(time.Duration(i) * time.Second),
		}))
	}

	env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{
		Kind: "comments", Page: 1, Limit: 10, Filter: content.Filter{VideoID: ids[0]},
	})
	require.NoError(t, err)
	require.Len(t, env.Items, 3)
	assert.Equal(t, int64(1), w.contents.GetByIDsCalls.Load())
	assert.Equal(t, "owner", env.Items[0].Comment.Owner.Username)
	assert.Equal(t, "fan", env.Items[1].Comment.Owner.Username)
}

func TestAssembleFeed_ChannelsSkipOwnerLookup(t *testing.T) {
	w := newWorld()
	w.channel(t, "alice")

	env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{Kind: "channels", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, env.Items, 1)
	assert.Zero(t, w.contents.GetByIDsCalls.Load())
}

func TestAssembleFeed_ViewerAliasesResolveToOneActor(t *testing.T) {
	w := newWorld()
	owner := w.channel(t, "owner")
	ids := w.videos(t, owner, 2)
	w.relate(t, owner, ids[1], relation.KindVideoLike)
	v, err := w.contents.GetByID(context.Background(), content.KindVideo, ids[0])
	require.NoError(t, err)
	draft := v.(*content.Video)
	draft.IsPublished = false
	require.NoError(t, w.contents.SaveVideo(context.Background(), draft))

	for _, alias := range []string{strings.ToUpper(owner), "urn:uuid:" + owner, "{" + owner + "}"} {
		t.Run(alias, func(t *testing.T) {
			env, err := newFeed(w).Handle(context.Background(), AssembleFeedQuery{
				Kind: "videos", Page: 1, Limit: 10,
				Filter:   content.Filter{OwnerID: strings.ToUpper(owner)},
				ViewerID: alias,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), env.TotalCount)
			for _, it := range env.Items {
				require.NotNil(t, it.Engagement.ViewerHasRelation)
				assert.Equal(t, it.ID == ids[1], *it.Engagement.ViewerHasRelation)
			}
		})
	}

	_, err = newFeed(w).Handle(context.Background(), AssembleFeedQuery{Kind: "videos", Page: 1, Limit: 10, ViewerID: "alice"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
