package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/memory"
)

type world struct {
	relations *memory.RelationStore
	contents  *memory.ContentStore
	views     *ViewBuilder
	base      time.Time
}

func newWorld() *world {
	rs := memory.NewRelationStore()
	return &world{
		relations: rs,
		contents:  memory.NewContentStore(rs),
		views:     NewViewBuilder(rs),
		base:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (w *world) channel(t *testing.T, username string) string {
	t.Helper()
	id := shared.GenerateID().String()
	require.NoError(t, w.contents.SaveChannel(context.Background(), &content.Channel{
		ID: id, Username: username, FullName: username, AvatarRef: "avatars/" + username + ".png", CreatedAt: w.base,
	}))
	return id
}

// videos creates n published videos owned by owner, one minute apart.
func (w *world) videos(t *testing.T, owner string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = shared.GenerateID().String()
		require.NoError(t, w.contents.SaveVideo(context.Background(), &content.Video{
			ID:           ids[i],
			OwnerID:      owner,
			Title:        fmt.Sprintf("video %02d", i),
			ThumbnailRef: fmt.Sprintf("thumbs/%d.jpg", i),
			Duration:     float64(60 * (i + 1)),
			Views:        int64(i * 10),
			IsPublished:  true,
			CreatedAt:    w.base.Add(time.Duration(i) * time.Minute),
		}))
	}
	return ids
}

func (w *world) relate(t *testing.T, actor, target string, kind relation.Kind) {
	t.Helper()
	created, err := w.relations.InsertIfAbsent(context.Background(), relation.Key{ActorID: actor, TargetID: target, Kind: kind})
	require.NoError(t, err)
	require.True(t, created)
}

type prefixResolver struct{}

func (prefixResolver) ResolveURL(ref string) string { return "https://cdn.test/" + ref }
