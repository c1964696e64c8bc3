package postgres

import (
	"context"

	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RELATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RelationRepository implements relation.Store for PostgreSQL.
// Atomicity comes from the (actor_id, target_id, kind) primary key.
type RelationRepository struct {
	conn *Connection
}

// NewRelationRepository creates a new RelationRepository.
func NewRelationRepository(conn *Connection) *RelationRepository {
	return &RelationRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-key Operations
// ─────────────────────────────────────────────────────────────────────────────

// Exists reports whether the relation is present.
func (r *RelationRepository) Exists(ctx context.Context, key relation.Key) (bool, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS(
			SELECT 1 FROM relations
			WHERE actor_id = $1 AND target_id = $2 AND kind = $3
		)
	`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, key.ActorID, key.TargetID, key.Kind.String()).Scan(&exists); err != nil {
		return false, shared.StoreError("relation", "Exists", err)
	}
	return exists, nil
}

// InsertIfAbsent creates the relation; concurrent duplicates affect zero rows.
func (r *RelationRepository) InsertIfAbsent(ctx context.Context, key relation.Key) (bool, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO relations (actor_id, target_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id, target_id, kind) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, key.ActorID, key.TargetID, key.Kind.String())
	if err != nil {
		if IsCheckViolation(err) {
			return false, shared.ErrSelfSubscription
		}
		return false, shared.StoreError("relation", "InsertIfAbsent", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteIfPresent removes the relation.
func (r *RelationRepository) DeleteIfPresent(ctx context.Context, key relation.Key) (bool, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := `DELETE FROM relations WHERE actor_id = $1 AND target_id = $2 AND kind = $3`

	tag, err := r.conn.Exec(ctx, query, key.ActorID, key.TargetID, key.Kind.String())
	if err != nil {
		return false, shared.StoreError("relation", "DeleteIfPresent", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByTarget counts relations of kind on one target.
func (r *RelationRepository) CountByTarget(ctx context.Context, targetID string, kind relation.Kind) (int64, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := `SELECT COUNT(*) FROM relations WHERE target_id = $1 AND kind = $2`

	var count int64
	if err := r.conn.QueryRow(ctx, query, targetID, kind.String()).Scan(&count); err != nil {
		return 0, shared.StoreError("relation", "CountByTarget", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Batched Reads
// ─────────────────────────────────────────────────────────────────────────────

// CountByTargets counts relations for every id in one round-trip.
func (r *RelationRepository) CountByTargets(ctx context.Context, targetIDs []string, kind relation.Kind) (map[string]int64, error) {
	counts := make(map[string]int64, len(targetIDs))
	for _, id := range targetIDs {
		counts[id] = 0
	}
	if len(targetIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT target_id, COUNT(*)
		FROM relations
		WHERE target_id = ANY($1) AND kind = $2
		GROUP BY target_id
	`

	rows, err := r.conn.Query(ctx, query, targetIDs, kind.String())
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
func (r *RelationRepository) ActorHasRelation(ctx context.Context, actorID string, targetIDs []string, kind relation.Kind) (map[string]struct{}, error) {
	held := make(map[string]struct{})
	if len(targetIDs) == 0 || actorID == "" {
		return held, nil
	}

	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT target_id
		FROM relations
		WHERE actor_id = $1 AND target_id = ANY($2) AND kind = $3
	`

	rows, err := r.conn.Query(ctx, query, actorID, targetIDs, kind.String())
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

var _ relation.Store = (*RelationRepository)(nil)
