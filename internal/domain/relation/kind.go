// Package relation models directed engagement edges between an actor and a
// target: likes on videos and comments, and channel subscriptions.
package relation

import (
	"strings"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// Kind is the type of a relation.
type Kind string

const (
	KindVideoLike    Kind = "VIDEO_LIKE"
	KindCommentLike  Kind = "COMMENT_LIKE"
	KindSubscription Kind = "SUBSCRIPTION"
)

var kindSlugs = map[string]Kind{
	"video-like":   KindVideoLike,
	"comment-like": KindCommentLike,
	"subscription": KindSubscription,
}

// ParseKind accepts the URL slug (video-like) or the constant (VIDEO_LIKE).
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if k, ok := kindSlugs[strings.ToLower(s)]; ok {
		return k, nil
	}
	if k := Kind(strings.ToUpper(s)); k.IsValid() {
		return k, nil
	}
	return "", shared.ErrUnknownRelationKind
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindVideoLike, KindCommentLike, KindSubscription:
		return true
	}
	return false
}

// String returns the constant form.
func (k Kind) String() string {
	return string(k)
}

// Slug returns the URL form.
func (k Kind) Slug() string {
	for slug, kind := range kindSlugs {
		if kind == k {
			return slug
		}
	}
	return strings.ToLower(string(k))
}

// TargetKind is the content collection the relation points into.
func (k Kind) TargetKind() content.Kind {
	switch k {
	case KindVideoLike:
		return content.KindVideo
	case KindCommentLike:
		return content.KindComment
	default:
		return content.KindChannel
	}
}

// ForbidsSelf reports whether actor and target must differ.
func (k Kind) ForbidsSelf() bool {
	return k == KindSubscription
}

// ForContent returns the relation kind aggregated on listings of ck.
func ForContent(ck content.Kind) (Kind, error) {
	switch ck {
	case content.KindVideo:
		return KindVideoLike, nil
	case content.KindComment:
		return KindCommentLike, nil
	case content.KindChannel:
		return KindSubscription, nil
	default:
		return "", shared.ErrUnknownContentKind
	}
}
