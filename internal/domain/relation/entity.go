package relation

import (
	"time"
)

// Key identifies a relation. At most one relation exists per Key.
type Key struct {
	ActorID  string
	TargetID string
	Kind     Kind
}

// IsSelf reports whether actor and target are the same entity.
func (k Key) IsSelf() bool {
	return k.ActorID == k.TargetID
}

// Relation is a stored edge. Relations are created and deleted, never updated.
type Relation struct {
	Key
	CreatedAt time.Time
}

// AggregateView is the relation-derived summary attached to a content item.
//
// ViewerHasRelation is nil for anonymous viewers, which omits the key from
// JSON; a non-nil false means the viewer was checked and holds no relation.
type AggregateView struct {
	TargetID          string `json:"target_id"`
	RelationCount     int64  `json:"relation_count"`
	ViewerHasRelation *bool  `json:"viewer_has_relation,omitempty"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
