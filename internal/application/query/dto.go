package query

import (
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
)

// VideoDTO is the public shape of a video.
type VideoDTO struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool        `json:"is_published"`
	CreatedAt    time.Time   `json:"created_at"`
	Owner        *ChannelDTO `json:"owner,omitempty"`
}

// CommentDTO is the public shape of a comment.
type CommentDTO struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	VideoID   string    `json:"video_id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	Owner     *ChannelDTO `json:"owner,omitempty"`
}

// ChannelDTO is the public shape of a channel.
type ChannelDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedItem is one content item merged with its engagement aggregate.
// Exactly one of Video, Comment, Channel is set.
type FeedItem struct {
	ID         string                 `json:"id"`
	Kind       content.Kind           `json:"kind"`
	Video      *VideoDTO              `json:"video,omitempty"`
	Comment    *CommentDTO            `json:"comment,omitempty"`
	Channel    *ChannelDTO            `json:"channel,omitempty"`
	Engagement relation.AggregateView `json:"engagement"`
}

type presenter struct {
	assets content.AssetResolver
}

func (p presenter) url(ref string) string {
	if p.assets == nil || ref == "" {
		return ref
	}
	return p.assets.ResolveURL(ref)
}

func (p presenter) video(v *content.Video) *VideoDTO {
	return &VideoDTO{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     p.url(v.VideoRef),
		ThumbnailURL: p.url(v.ThumbnailRef),
		Duration:     v.Duration,
		Views:        v.Views,
		IsPublished:  v.IsPublished,
		CreatedAt:    v.CreatedAt,
	}
}

func (p presenter) comment(c *content.Comment) *CommentDTO {
	return &CommentDTO{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		VideoID:   c.VideoID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (p presenter) channel(c *content.Channel) *ChannelDTO {
	return &ChannelDTO{
		ID:        c.ID,
		Username:  c.Username,
		FullName:  c.FullName,
		AvatarURL: p.url(c.AvatarRef),
		CoverURL:  p.url(c.CoverRef),
		CreatedAt: c.CreatedAt,
	}
}

// owner presents the channel behind ownerID, nil when it is not in owners.
func (p presenter) owner(owners map[string]content.Item, ownerID string) *ChannelDTO {
	if c, ok := owners[ownerID].(*content.Channel); ok {
		return p.channel(c)
	}
	return nil
}

func (p presenter) item(it content.Item, view relation.AggregateView, owners map[string]content.Item) FeedItem {
	out := FeedItem{ID: it.ItemID(), Kind: it.ItemKind(), Engagement: view}
	switch v := it.(type) {
	case *content.Video:
		out.Video = p.video(v)
		out.Video.Owner = p.owner(owners, v.OwnerID)
	case *content.Comment:
		out.Comment = p.comment(v)
		out.Comment.Owner = p.owner(owners, v.OwnerID)
	case *content.Channel:
		out.Channel = p.channel(v)
	}
	return out
}
