// Package content describes the items engagement is attached to: videos,
// comments and channels. Content itself is owned by another service; this
// package only defines the read model the engagement engine needs and the
// ports it consumes.
package content

import (
	"strings"
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// KIND
// ══════════════════════════════════════════════════════════════════════════════

// Kind identifies a content collection.
type Kind string

const (
	KindVideo   Kind = "videos"
	KindComment Kind = "comments"
	KindChannel Kind = "channels"
)

// ParseKind accepts the plural collection name, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindVideo, KindComment, KindChannel:
		return k, nil
	default:
		return "", shared.ErrUnknownContentKind
	}
}

// String returns the collection name.
func (k Kind) String() string {
	return string(k)
}

// ══════════════════════════════════════════════════════════════════════════════
// ITEMS
// ══════════════════════════════════════════════════════════════════════════════

// Item is any content row that can carry an engagement aggregate.
type Item interface {
	ItemID() string
	ItemOwnerID() string
	ItemCreatedAt() time.Time
	ItemKind() Kind
}

// Video is a published (or draft) upload.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoRef     string    `json:"video_ref"`
	ThumbnailRef string    `json:"thumbnail_ref"`
	Duration     float64   `json:"duration"` // seconds
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (v *Video) ItemID() string           { return v.ID }
func (v *Video) ItemOwnerID() string      { return v.OwnerID }
func (v *Video) ItemCreatedAt() time.Time { return v.CreatedAt }
func (v *Video) ItemKind() Kind           { return KindVideo }

// Comment is a text comment on a video.
type Comment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	VideoID   string    `json:"video_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) ItemID() string           { return c.ID }
func (c *Comment) ItemOwnerID() string      { return c.OwnerID }
func (c *Comment) ItemCreatedAt() time.Time { return c.CreatedAt }
func (c *Comment) ItemKind() Kind           { return KindComment }

// Channel is a user's public profile. A channel is owned by itself, so its
// id is also the actor id of its owner.
type Channel struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarRef string    `json:"avatar_ref"`
	CoverRef  string    `json:"cover_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Channel) ItemID() string           { return c.ID }
func (c *Channel) ItemOwnerID() string      { return c.ID }
func (c *Channel) ItemCreatedAt() time.Time { return c.CreatedAt }
func (c *Channel) ItemKind() Kind           { return KindChannel }

// IDs returns the ids of items in order.
func IDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemID()
	}
	return out
}
