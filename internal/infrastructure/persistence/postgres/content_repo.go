package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/sqlbuild"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ContentRepository implements content.Store and content.Writer for PostgreSQL.
type ContentRepository struct {
	conn *Connection
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(conn *Connection) *ContentRepository {
	return &ContentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns one item or shared.ErrContentNotFound.
func (r *ContentRepository) GetByID(ctx context.Context, kind content.Kind, id string) (content.Item, error) {
	table, err := sqlbuild.Table(kind)
	if err != nil {
		return nil, shared.ErrUnknownContentKind
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.id = $1", sqlbuild.Columns(kind), table)
	item, err := scanItem(kind, r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrContentNotFound
		}
		return nil, shared.StoreError("content", "GetByID", err)
	}
	return item, nil
}

// GetByIDs loads every listed item of kind in one statement.
func (r *ContentRepository) GetByIDs(ctx context.Context, kind content.Kind, ids []string) (map[string]content.Item, error) {
	table, err := sqlbuild.Table(kind)
	if err != nil {
		return nil, shared.ErrUnknownContentKind
	}
	out := make(map[string]content.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.id = ANY($1)", sqlbuild.Columns(kind), table)
	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, shared.StoreError("content", "GetByIDs", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(kind, rows)
		if err != nil {
			return nil, shared.StoreError("content", "GetByIDs", err)
		}
		out[item.ItemID()] = item
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("content", "GetByIDs", err)
	}
	return out, nil
}

// Exists reports whether the item exists.
func (r *ContentRepository) Exists(ctx context.Context, kind content.Kind, id string) (bool, error) {
	table, err := sqlbuild.Table(kind)
	if err != nil {
		return false, shared.ErrUnknownContentKind
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", table)
	if err := r.conn.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, shared.StoreError("content", "Exists", err)
	}
	return exists, nil
}

// Query returns one page ordered by the sort column then id.
func (r *ContentRepository) Query(ctx context.Context, q content.Query) ([]content.Item, error) {
	query, args, err := sqlbuild.Select(sqlbuild.Postgres, q)
	if err != nil {
		return nil, shared.ErrUnknownContentKind
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreError("content", "Query", err)
	}
	defer rows.Close()

	items := make([]content.Item, 0, q.Take)
	for rows.Next() {
		item, err := scanItem(q.Kind, rows)
		if err != nil {
			return nil, shared.StoreError("content", "Query", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("content", "Query", err)
	}

	return items, nil
}

// Count returns the number of matching items.
func (r *ContentRepository) Count(ctx context.Context, kind content.Kind, filter content.Filter) (int64, error) {
	query, args, err := sqlbuild.Count(sqlbuild.Postgres, kind, filter)
	if err != nil {
		return 0, shared.ErrUnknownContentKind
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, shared.StoreError("content", "Count", err)
	}
	return total, nil
}

func scanItem(kind content.Kind, row pgx.Row) (content.Item, error) {
	switch kind {
	case content.KindVideo:
		var v content.Video
		err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoRef, &v.ThumbnailRef,
			&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &v, nil
	case content.KindComment:
		var c content.Comment
		if err := row.Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		return &c, nil
	default:
		var ch content.Channel
		if err := row.Scan(&ch.ID, &ch.Username, &ch.FullName, &ch.AvatarRef, &ch.CoverRef, &ch.CreatedAt); err != nil {
			return nil, err
		}
		return &ch, nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// SaveChannel upserts a channel.
func (r *ContentRepository) SaveChannel(ctx context.Context, c *content.Channel) error {
	query := `
		INSERT INTO channels (id, username, full_name, avatar_ref, cover_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			avatar_ref = EXCLUDED.avatar_ref,
			cover_ref = EXCLUDED.cover_ref
	`

	_, err := r.conn.Exec(ctx, query, c.ID, c.Username, c.FullName, c.AvatarRef, c.CoverRef, c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("content", "SaveChannel", shared.ErrAlreadyExists, "username is taken", err)
		}
		return fmt.Errorf("failed to save channel: %w", err)
	}
	return nil
}

// SaveVideo upserts a video.
func (r *ContentRepository) SaveVideo(ctx context.Context, v *content.Video) error {
	query := `
		INSERT INTO videos (
			id, owner_id, title, description, video_ref, thumbnail_ref,
			duration, views, is_published, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			video_ref = EXCLUDED.video_ref,
			thumbnail_ref = EXCLUDED.thumbnail_ref,
			duration = EXCLUDED.duration,
			views = EXCLUDED.views,
			is_published = EXCLUDED.is_published,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoRef, v.ThumbnailRef,
		v.Duration, v.Views, v.IsPublished, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}
	return nil
}

// SaveComment upserts a comment.
func (r *ContentRepository) SaveComment(ctx context.Context, c *content.Comment) error {
	query := `
		INSERT INTO comments (id, owner_id, video_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query, c.ID, c.OwnerID, c.VideoID, c.Content, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

var (
	_ content.Store  = (*ContentRepository)(nil)
	_ content.Writer = (*ContentRepository)(nil)
)
