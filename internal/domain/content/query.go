package content

import (
	"strings"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// Filter narrows a content listing. Which fields apply depends on the kind:
//
//	videos:   Search, OwnerID, LikedBy, IncludeUnpublished
//	comments: VideoID (required)
//	channels: Search, SubscribedBy, SubscribersOf
type Filter struct {
	Search string

	OwnerID            string
	LikedBy            string
	IncludeUnpublished bool

	VideoID string

	SubscribedBy  string
	SubscribersOf string
}

// Normalize returns f with every id in canonical uuid form, checked against
// the kind's rules.
func (f Filter) Normalize(kind Kind) (Filter, error) {
	for _, id := range []*string{&f.OwnerID, &f.LikedBy, &f.VideoID, &f.SubscribedBy, &f.SubscribersOf} {
		canonical, err := shared.CanonicalOptionalID(*id)
		if err != nil {
			return Filter{}, shared.WrapError("feed", "Validate", shared.ErrInvalidID, "filter id is malformed", err)
		}
		*id = canonical
	}
	if kind == KindComment && f.VideoID == "" {
		return Filter{}, shared.ErrMissingFilter
	}
	return f, nil
}

// Validate checks the filter against the kind's rules.
func (f Filter) Validate(kind Kind) error {
	_, err := f.Normalize(kind)
	return err
}

// Column is a storage column name. Only values produced by ResolveSort reach SQL.
type Column string

const (
	ColumnCreatedAt Column = "created_at"
	ColumnDuration  Column = "duration"
	ColumnViews     Column = "views"
	ColumnTitle     Column = "title"
	ColumnUsername  Column = "username"
)

// DefaultSortField applies when the client sends no sort field.
const DefaultSortField = "createdAt"

var sortAllowList = map[Kind]map[string]Column{
	KindVideo: {
		"createdAt": ColumnCreatedAt,
		"duration":  ColumnDuration,
		"views":     ColumnViews,
		"title":     ColumnTitle,
	},
	KindComment: {
		"createdAt": ColumnCreatedAt,
	},
	KindChannel: {
		"createdAt": ColumnCreatedAt,
		"username":  ColumnUsername,
	},
}

// ResolveSort maps a client sort field to a column for kind.
func ResolveSort(kind Kind, field string) (Column, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		field = DefaultSortField
	}
	allowed, ok := sortAllowList[kind]
	if !ok {
		return "", shared.ErrUnknownContentKind
	}
	col, ok := allowed[field]
	if !ok {
		return "", shared.ErrInvalidSortField
	}
	return col, nil
}

// SortFields lists the allowed client sort fields for kind.
func SortFields(kind Kind) []string {
	out := make([]string, 0, len(sortAllowList[kind]))
	for f := range sortAllowList[kind] {
		out = append(out, f)
	}
	return out
}

// Query describes one page of a content listing.
// Results are ordered by Sort then id ascending so that pages are stable.
type Query struct {
	Kind      Kind
	Filter    Filter
	Sort      Column
	Direction shared.SortDirection
	Skip      int
	Take      int
}
