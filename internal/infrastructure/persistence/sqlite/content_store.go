package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/sqlbuild"
)

// ContentStore implements content.Store and content.Writer on SQLite.
type ContentStore struct {
	db *sql.DB
}

type scanner interface {
	Scan(dest ...any) error
}

// GetByID returns one item or shared.ErrContentNotFound.
func (s *ContentStore) GetByID(ctx context.Context, kind content.Kind, id string) (content.Item, error) {
	table, err := sqlbuild.Table(kind)
	if err != nil {
		return nil, shared.ErrUnknownContentKind
	}
	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.id = ?", sqlbuild.Columns(kind), table)
	item, err := scanItem(kind, s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrContentNotFound
		}
		return nil, shared.StoreError("content", "GetByID", err)
	}
	return item, nil
}

// GetByIDs loads every listed item of kind in one statement.
func (s *ContentStore) GetByIDs(ctx context.Context, kind content.Kind, ids []string) (map[string]content.Item, error) {
	table, err := sqlbuild.Table(kind)
	if err != nil {
		return nil, shared.ErrUnknownContentKind
	}
	out := make(map[string]content.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.id IN (%s)", sqlbuild.Columns(kind), table, inClause(len(ids)))
	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *ContentStore) Exists(ctx context.Context, kind content.Kind, id string) (bool, error) {
	table, err := sqlbuild.Table(kind)
	if err != nil {
		return false, shared.ErrUnknownContentKind
	}
	var found int
	err = s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", table), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, shared.StoreError("content", "Exists", err)
	}
	return true, nil
}

// Query returns one page ordered by the sort column then id.
func (s *ContentStore) Query(ctx context.Context, q content.Query) ([]content.Item, error) {
	query, args, err := sqlbuild.Select(sqlbuild.SQLite, q)
	if err != nil {
		return nil, shared.ErrUnknownContentKind
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *ContentStore) Count(ctx context.Context, kind content.Kind, filter content.Filter) (int64, error) {
	query, args, err := sqlbuild.Count(sqlbuild.SQLite, kind, filter)
	if err != nil {
		return 0, shared.ErrUnknownContentKind
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, shared.StoreError("content", "Count", err)
	}
	return total, nil
}

func scanItem(kind content.Kind, row scanner) (content.Item, error) {
	var createdAt, updatedAt int64
	switch kind {
	case content.KindVideo:
		var v content.Video
		err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoRef, &v.ThumbnailRef,
			&v.Duration, &v.Views, &v.IsPublished, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		v.CreatedAt, v.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
		return &v, nil
	case content.KindComment:
		var c content.Comment
		if err := row.Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Content, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt, c.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
		return &c, nil
	default:
		var ch content.Channel
		if err := row.Scan(&ch.ID, &ch.Username, &ch.FullName, &ch.AvatarRef, &ch.CoverRef, &createdAt); err != nil {
			return nil, err
		}
		ch.CreatedAt = fromMillis(createdAt)
		return &ch, nil
	}
}

// SaveChannel upserts a channel.
func (s *ContentStore) SaveChannel(ctx context.Context, c *content.Channel) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (id, username, full_name, avatar_ref, cover_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   username = excluded.username,
		   full_name = excluded.full_name,
		   avatar_ref = excluded.avatar_ref,
		   cover_ref = excluded.cover_ref`,
		c.ID, c.Username, c.FullName, c.AvatarRef, c.CoverRef, toMillis(c.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.WrapError("content", "SaveChannel", shared.ErrAlreadyExists, "username is taken", err)
		}
		return fmt.Errorf("save channel: %w", err)
	}
	return nil
}

// SaveVideo upserts a video.
func (s *ContentStore) SaveVideo(ctx context.Context, v *content.Video) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (
		   id, owner_id, title, description, video_ref, thumbnail_ref,
		   duration, views, is_published, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   video_ref = excluded.video_ref,
		   thumbnail_ref = excluded.thumbnail_ref,
		   duration = excluded.duration,
		   views = excluded.views,
		   is_published = excluded.is_published,
		   updated_at = excluded.updated_at`,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoRef, v.ThumbnailRef,
		v.Duration, v.Views, v.IsPublished, toMillis(v.CreatedAt), toMillis(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	return nil
}

// SaveComment upserts a comment.
func (s *ContentStore) SaveComment(ctx context.Context, c *content.Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, owner_id, video_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   content = excluded.content,
		   updated_at = excluded.updated_at`,
		c.ID, c.OwnerID, c.VideoID, c.Content, toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

var (
	_ content.Store  = (*ContentStore)(nil)
	_ content.Writer = (*ContentStore)(nil)
)
