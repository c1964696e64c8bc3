package content

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Domain defines the contracts; implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Store is the read side of the content service.
type Store interface {
	// GetByID returns the item or an error matching shared.ErrNotFound.
	GetByID(ctx context.Context, kind Kind, id string) (Item, error)

	// GetByIDs returns the items of one kind keyed by id. Missing ids are
	// absent from the map.
	GetByIDs(ctx context.Context, kind Kind, ids []string) (map[string]Item, error)

	// Exists reports whether the item exists.
	Exists(ctx context.Context, kind Kind, id string) (bool, error)

	// Query returns one page of items.
	Query(ctx context.Context, q Query) ([]Item, error)

	// Count returns the number of items matching filter, ignoring paging.
	Count(ctx context.Context, kind Kind, filter Filter) (int64, error)
}

// Writer persists content. Used by seeding and tests; production content is
// written by the owning service.
type Writer interface {
	SaveChannel(ctx context.Context, c *Channel) error
	SaveVideo(ctx context.Context, v *Video) error
	SaveComment(ctx context.Context, c *Comment) error
}

// AssetResolver turns stored asset references into public URLs.
type AssetResolver interface {
	ResolveURL(ref string) string
}
