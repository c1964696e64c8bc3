package redis

import (
	"context"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// InvalidatingWriter is a content.Writer that drops the cached copy of every
// item it saves, so readers behind a ContentCache see the write on their next
// lookup. A failed invalidation is logged; the write itself has already
// succeeded and the entry expires with its TTL.
type InvalidatingWriter struct {
	next  content.Writer
	cache *ContentCache
	log   *logger.Logger
}

// NewInvalidatingWriter wraps next.
func NewInvalidatingWriter(next content.Writer, cache *ContentCache, log *logger.Logger) *InvalidatingWriter {
	if log == nil {
		log = logger.Nop()
	}
	return &InvalidatingWriter{next: next, cache: cache, log: log.With(logger.Component("content_writer"))}
}

// SaveChannel implements content.Writer.
func (w *InvalidatingWriter) SaveChannel(ctx context.Context, c *content.Channel) error {
	if err := w.next.SaveChannel(ctx, c); err != nil {
		return err
	}
	w.invalidate(ctx, "SaveChannel", content.KindChannel, c.ID)
	return nil
}

// SaveVideo implements content.Writer.
func (w *InvalidatingWriter) SaveVideo(ctx context.Context, v *content.Video) error {
	if err := w.next.SaveVideo(ctx, v); err != nil {
		return err
	}
	w.invalidate(ctx, "SaveVideo", content.KindVideo, v.ID)
	return nil
}

// SaveComment implements content.Writer.
func (w *InvalidatingWriter) SaveComment(ctx context.Context, c *content.Comment) error {
	if err := w.next.SaveComment(ctx, c); err != nil {
		return err
	}
	w.invalidate(ctx, "SaveComment", content.KindComment, c.ID)
	return nil
}

func (w *InvalidatingWriter) invalidate(ctx context.Context, op string, kind content.Kind, id string) {
	if err := w.cache.Invalidate(ctx, kind, id); err != nil {
		w.log.Warn("content cache invalidation failed",
			logger.Operation(op),
			logger.ContentKind(kind.String()),
			logger.String("id", id),
			logger.Err(err),
		)
	}
}

var _ content.Writer = (*InvalidatingWriter)(nil)
