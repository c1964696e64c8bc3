// Package sqlbuild renders content listing queries for the SQL adapters.
// Only columns produced by content.ResolveSort are interpolated; every value
// is passed as an argument.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
)

// Dialect renders positional placeholders.
type Dialect struct {
	Placeholder func(n int) string
}

var (
	// Postgres uses $1, $2, ...
	Postgres = Dialect{Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}

	// SQLite uses ?.
	SQLite = Dialect{Placeholder: func(int) string { return "?" }}
)

// Column lists per kind, in scan order.
const (
	VideoColumns   = "t.id, t.owner_id, t.title, t.description, t.video_ref, t.thumbnail_ref, t.duration, t.views, t.is_published, t.created_at, t.updated_at"
	CommentColumns = "t.id, t.owner_id, t.video_id, t.content, t.created_at, t.updated_at"
	ChannelColumns = "t.id, t.username, t.full_name, t.avatar_ref, t.cover_ref, t.created_at"
)

// Table returns the table for kind.
func Table(kind content.Kind) (string, error) {
	switch kind {
	case content.KindVideo:
		return "videos", nil
	case content.KindComment:
		return "comments", nil
	case content.KindChannel:
		return "channels", nil
	}
	return "", fmt.Errorf("sqlbuild: unknown content kind %q", kind)
}

// Columns returns the select list for kind.
func Columns(kind content.Kind) string {
	switch kind {
	case content.KindVideo:
		return VideoColumns
	case content.KindComment:
		return CommentColumns
	default:
		return ChannelColumns
	}
}

type builder struct {
	d          Dialect
	args       []any
	conditions []string
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) where(cond string) {
	b.conditions = append(b.conditions, cond)
}

func (b *builder) clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

func (b *builder) search(term string, cols ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, b.arg(likePattern(term)))
	}
	b.where("(" + strings.Join(parts, " OR ") + ")")
}

func (b *builder) filter(kind content.Kind, f content.Filter) {
	switch kind {
	case content.KindVideo:
		if !f.IncludeUnpublished {
			b.where("t.is_published")
		}
		if f.OwnerID != "" {
			b.where("t.owner_id = " + b.arg(f.OwnerID))
		}
		if f.LikedBy != "" {
			b.where(fmt.Sprintf(
				"EXISTS (SELECT 1 FROM relations r WHERE r.actor_id = %s AND r.target_id = t.id AND r.kind = %s)",
				b.arg(f.LikedBy), b.arg(relation.KindVideoLike.String())))
		}
		b.search(f.Search, "t.title", "t.description")
	case content.KindComment:
		b.where("t.video_id = " + b.arg(f.VideoID))
	case content.KindChannel:
		if f.SubscribedBy != "" {
			b.where(fmt.Sprintf(
				"EXISTS (SELECT 1 FROM relations r WHERE r.actor_id = %s AND r.target_id = t.id AND r.kind = %s)",
				b.arg(f.SubscribedBy), b.arg(relation.KindSubscription.String())))
		}
		if f.SubscribersOf != "" {
			b.where(fmt.Sprintf(
				"EXISTS (SELECT 1 FROM relations r WHERE r.actor_id = t.id AND r.target_id = %s AND r.kind = %s)",
				b.arg(f.SubscribersOf), b.arg(relation.KindSubscription.String())))
		}
		b.search(f.Search, "t.username", "t.full_name")
	}
}

// Select renders one page of q ordered by the sort column then id.
func Select(d Dialect, q content.Query) (string, []any, error) {
	table, err := Table(q.Kind)
	if err != nil {
		return "", nil, err
	}
	sortCol := q.Sort
	if sortCol == "" {
		sortCol = content.ColumnCreatedAt
	}

	b := &builder{d: d}
	b.filter(q.Kind, q.Filter)

	query := fmt.Sprintf("SELECT %s FROM %s t%s ORDER BY t.%s %s, t.id ASC",
		Columns(q.Kind), table, b.clause(), sortCol, q.Direction.SQL())
	query += fmt.Sprintf(" LIMIT %s OFFSET %s", b.arg(q.Take), b.arg(q.Skip))

	return query, b.args, nil
}

// Count renders the total for kind and filter.
func Count(d Dialect, kind content.Kind, f content.Filter) (string, []any, error) {
	table, err := Table(kind)
	if err != nil {
		return "", nil, err
	}
	b := &builder{d: d}
	b.filter(kind, f)
	return fmt.Sprintf("SELECT COUNT(*) FROM %s t%s", table, b.clause()), b.args, nil
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
