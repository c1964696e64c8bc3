package redis

import (
	"context"
	"errors"
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// cachedItem is the stored form of a content item.
type cachedItem struct {
	Kind    content.Kind     `json:"kind"`
	Video   *content.Video   `json:"video,omitempty"`
	Comment *content.Comment `json:"comment,omitempty"`
	Channel *content.Channel `json:"channel,omitempty"`
}

func (c cachedItem) item() content.Item {
	switch {
	case c.Video != nil:
		return c.Video
	case c.Comment != nil:
		return c.Comment
	case c.Channel != nil:
		return c.Channel
	}
	return nil
}

func wrapItem(it content.Item) cachedItem {
	out := cachedItem{Kind: it.ItemKind()}
	switch v := it.(type) {
	case *content.Video:
		out.Video = v
	case *content.Comment:
		out.Comment = v
	case *content.Channel:
		out.Channel = v
	}
	return out
}

// ContentCache is a read-through content.Store. GetByID and Exists consult
// Redis first; listings always go to the backing store. Cache failures are
// logged and fall through, so Redis never fails a request.
type ContentCache struct {
	next  content.Store
	cache *Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewContentCache wraps next.
func NewContentCache(next content.Store, cache *Cache, ttl time.Duration, log *logger.Logger) *ContentCache {
	if ttl <= 0 {
		ttl = TTLContent
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ContentCache{next: next, cache: cache, ttl: ttl, log: log.With(logger.Component("content_cache"))}
}

// GetByID implements content.Store.
func (c *ContentCache) GetByID(ctx context.Context, kind content.Kind, id string) (content.Item, error) {
	key := ContentKey(kind.String(), id)

	var cached cachedItem
	err := c.cache.Get(ctx, key, &cached)
	if err == nil {
		if it := cached.item(); it != nil && cached.Kind == kind {
			return it, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Debug("content cache read failed", logger.Err(err), logger.String("key", key))
	}

	it, err := c.next.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, wrapItem(it), c.ttl); err != nil {
		c.log.Debug("content cache write failed", logger.Err(err), logger.String("key", key))
	}
	return it, nil
}

// Exists implements content.Store. Only positive answers are served from cache.
func (c *ContentCache) Exists(ctx context.Context, kind content.Kind, id string) (bool, error) {
	key := ContentKey(kind.String(), id)
	hit, err := c.cache.Exists(ctx, key)
	if err != nil {
		c.log.Debug("content cache exists failed", logger.Err(err), logger.String("key", key))
	}
	if hit {
		return true, nil
	}

	_, err = c.GetByID(ctx, kind, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByIDs implements content.Store. Batches go to the backing store.
func (c *ContentCache) GetByIDs(ctx context.Context, kind content.Kind, ids []string) (map[string]content.Item, error) {
	return c.next.GetByIDs(ctx, kind, ids)
}

// Query implements content.Store.
func (c *ContentCache) Query(ctx context.Context, q content.Query) ([]content.Item, error) {
	return c.next.Query(ctx, q)
}

// Count implements content.Store.
func (c *ContentCache) Count(ctx context.Context, kind content.Kind, filter content.Filter) (int64, error) {
	return c.next.Count(ctx, kind, filter)
}

// Invalidate drops a cached item.
func (c *ContentCache) Invalidate(ctx context.Context, kind content.Kind, id string) error {
	return c.cache.Delete(ctx, ContentKey(kind.String(), id))
}

var _ content.Store = (*ContentCache)(nil)
