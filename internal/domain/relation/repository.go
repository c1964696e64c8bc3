package relation

import (
	"context"
)

// Store is the persistence port for relations.
//
// Mutations are atomic per Key: under concurrent InsertIfAbsent calls for the
// same Key exactly one caller observes created=true, and the rest get false
// without an error. Backend failures are returned as errors matching
// shared.ErrStoreUnavailable. Implementations do not retry.
type Store interface {
	// Exists reports whether the relation is present.
	Exists(ctx context.Context, key Key) (bool, error)

	// InsertIfAbsent creates the relation unless it already exists.
	InsertIfAbsent(ctx context.Context, key Key) (created bool, err error)

	// DeleteIfPresent removes the relation if it exists.
	DeleteIfPresent(ctx context.Context, key Key) (deleted bool, err error)

	// CountByTarget counts relations of kind pointing at targetID.
	CountByTarget(ctx context.Context, targetID string, kind Kind) (int64, error)

	// CountByTargets counts relations for many targets in one round-trip.
	// Every requested id is present in the result, with 0 when unrepresented.
	CountByTargets(ctx context.Context, targetIDs []string, kind Kind) (map[string]int64, error)

	// ActorHasRelation returns the subset of targetIDs the actor holds a
	// relation of kind to, in one round-trip.
	ActorHasRelation(ctx context.Context, actorID string, targetIDs []string, kind Kind) (map[string]struct{}, error)
}
