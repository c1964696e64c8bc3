package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// RelationStore implements relation.Store on SQLite.
type RelationStore struct {
	db *sql.DB
}

// Exists reports whether the relation is present.
func (s *RelationStore) Exists(ctx context.Context, key relation.Key) (bool, error) {
	var found int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM relations WHERE actor_id = ? AND target_id = ? AND kind = ?`,
		key.ActorID, key.TargetID, key.Kind.String(),
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, shared.StoreError("relation", "Exists", err)
	}
	return true, nil
}

// InsertIfAbsent creates the relation unless it exists.
func (s *RelationStore) InsertIfAbsent(ctx context.Context, key relation.Key) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO relations (actor_id, target_id, kind, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (actor_id, target_id, kind) DO NOTHING`,
		key.ActorID, key.TargetID, key.Kind.String(), toMillis(time.Now()),
	)
	if err != nil {
		if isCheckViolation(err) {
			return false, shared.ErrSelfSubscription
		}
		return false, shared.StoreError("relation", "InsertIfAbsent", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, shared.StoreError("relation", "InsertIfAbsent", err)
	}
	return n == 1, nil
}

// DeleteIfPresent removes the relation.
func (s *RelationStore) DeleteIfPresent(ctx context.Context, key relation.Key) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM relations WHERE actor_id = ? AND target_id = ? AND kind = ?`,
		key.ActorID, key.TargetID, key.Kind.String(),
	)
	if err != nil {
		return false, shared.StoreError("relation", "DeleteIfPresent", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, shared.StoreError("relation", "DeleteIfPresent", err)
	}
	return n > 0, nil
}

// CountByTarget counts relations of kind on one target.
func (s *RelationStore) CountByTarget(ctx context.Context, targetID string, kind relation.Kind) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relations WHERE target_id = ? AND kind = ?`,
		targetID, kind.String(),
	).Scan(&n)
	if err != nil {
		return 0, shared.StoreError("relation", "CountByTarget", err)
	}
	return n, nil
}

// CountByTargets counts relations for every id in one statement.
func (s *RelationStore) CountByTargets(ctx context.Context, targetIDs []string, kind relation.Kind) (map[string]int64, error) {
	counts := make(map[string]int64, len(targetIDs))
	for _, id := range targetIDs {
		counts[id] = 0
	}
	if len(targetIDs) == 0 {
		return counts, nil
	}

	args := make([]any, 0, len(targetIDs)+1)
	for _, id := range targetIDs {
		args = append(args, id)
	}
	args = append(args, kind.String())

	query := fmt.Sprintf(
		`SELECT target_id, COUNT(*) FROM relations WHERE target_id IN (%s) AND kind = ? GROUP BY target_id`,
		inClause(len(targetIDs)))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreError("relation", "CountByTargets", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, shared.StoreError("relation", "CountByTargets", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("relation", "CountByTargets", err)
	}
	return counts, nil
}

// ActorHasRelation returns the subset of targetIDs held by actorID.
func (s *RelationStore) ActorHasRelation(ctx context.Context, actorID string, targetIDs []string, kind relation.Kind) (map[string]struct{}, error) {
	held := make(map[string]struct{})
	if actorID == "" || len(targetIDs) == 0 {
		return held, nil
	}

	args := make([]any, 0, len(targetIDs)+2)
	args = append(args, actorID)
	for _, id := range targetIDs {
		args = append(args, id)
	}
	args = append(args, kind.String())

	query := fmt.Sprintf(
		`SELECT target_id FROM relations WHERE actor_id = ? AND target_id IN (%s) AND kind = ?`,
		inClause(len(targetIDs)))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreError("relation", "ActorHasRelation", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, shared.StoreError("relation", "ActorHasRelation", err)
		}
		held[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("relation", "ActorHasRelation", err)
	}
	return held, nil
}

var _ relation.Store = (*RelationStore)(nil)
