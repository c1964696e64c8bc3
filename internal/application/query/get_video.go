package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET VIDEO QUERY
// A single video with its like aggregate and the owner's subscriber aggregate.
// ══════════════════════════════════════════════════════════════════════════════

// GetVideoQuery identifies the video and the viewer.
type GetVideoQuery struct {
	VideoID  string
	ViewerID string
}

// Validate checks the video and viewer ids.
func (q GetVideoQuery) Validate() error {
	_, _, err := q.canonical()
	return err
}

func (q GetVideoQuery) canonical() (videoID, viewerID string, err error) {
	vid, err := shared.NewEntityID(q.VideoID)
	if err != nil {
		return "", "", shared.WrapError("content", "GetVideo", shared.ErrInvalidID, "video id is malformed", err)
	}
	viewerID, err = canonicalViewer(q.ViewerID)
	if err != nil {
		return "", "", err
	}
	return vid.String(), viewerID, nil
}

// GetVideoResult is the video detail.
type GetVideoResult struct {
	Video            *VideoDTO              `json:"video"`
	Likes            relation.AggregateView `json:"likes"`
	Owner            *ChannelDTO            `json:"owner,omitempty"`
	OwnerSubscribers relation.AggregateView `json:"owner_subscribers"`
}

// GetVideoHandler answers GetVideoQuery.
type GetVideoHandler struct {
	contents content.Store
	views    *ViewBuilder
	present  presenter
}

// NewGetVideoHandler creates a new GetVideoHandler.
func NewGetVideoHandler(contents content.Store, views *ViewBuilder, assets content.AssetResolver) *GetVideoHandler {
	return &GetVideoHandler{contents: contents, views: views, present: presenter{assets: assets}}
}

// Handle loads the video. Unpublished videos are only visible to their owner.
func (h *GetVideoHandler) Handle(ctx context.Context, q GetVideoQuery) (*GetVideoResult, error) {
	videoID, viewerID, err := q.canonical()
	if err != nil {
		return nil, err
	}

	item, err := h.contents.GetByID(ctx, content.KindVideo, videoID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrContentNotFound
		}
		return nil, shared.StoreError("content", "GetVideo", err)
	}
	video, ok := item.(*content.Video)
	if !ok || (!video.IsPublished && video.OwnerID != viewerID) {
		return nil, shared.ErrContentNotFound
	}

	result := &GetVideoResult{Video: h.present.video(video)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		views, err := h.views.BuildViews(gctx, []string{video.ID}, relation.KindVideoLike, viewerID)
		if err != nil {
			return err
		}
		result.Likes = views[video.ID]
		return nil
	})
	g.Go(func() error {
		views, err := h.views.BuildViews(gctx, []string{video.OwnerID}, relation.KindSubscription, viewerID)
		if err != nil {
			return err
		}
		result.OwnerSubscribers = views[video.OwnerID]
		return nil
	})
	g.Go(func() error {
		owner, err := h.contents.GetByID(gctx, content.KindChannel, video.OwnerID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil
			}
			return shared.StoreError("content", "GetVideo", err)
		}
		if ch, ok := owner.(*content.Channel); ok {
			result.Owner = h.present.channel(ch)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
