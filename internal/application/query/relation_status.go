package query

import (
	"context"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// RelationStatusQuery asks for the aggregate of one target.
type RelationStatusQuery struct {
	Kind     string
	TargetID string
	ViewerID string
}

// RelationStatusHandler answers RelationStatusQuery with single-target reads.
type RelationStatusHandler struct {
	relations relation.Store
	contents  content.Store
}

// NewRelationStatusHandler creates a new RelationStatusHandler.
func NewRelationStatusHandler(relations relation.Store, contents content.Store) *RelationStatusHandler {
	return &RelationStatusHandler{relations: relations, contents: contents}
}

// Handle returns the count and, for a known viewer, whether they hold the relation.
func (h *RelationStatusHandler) Handle(ctx context.Context, q RelationStatusQuery) (*relation.AggregateView, error) {
	kind, err := relation.ParseKind(q.Kind)
	if err != nil {
		return nil, err
	}
	target, err := shared.NewEntityID(q.TargetID)
	if err != nil {
		return nil, shared.ErrInvalidTarget
	}
	targetID := target.String()
	viewer, err := canonicalViewer(q.ViewerID)
	if err != nil {
		return nil, err
	}

	exists, err := h.contents.Exists(ctx, kind.TargetKind(), targetID)
	if err != nil {
		return nil, shared.StoreError("relation", "Status", err)
	}
	if !exists {
		return nil, shared.ErrTargetNotFound
	}

	count, err := h.relations.CountByTarget(ctx, targetID, kind)
	if err != nil {
		return nil, shared.StoreError("relation", "Status", err)
	}
	view := &relation.AggregateView{TargetID: targetID, RelationCount: count}

	if viewer != "" {
		held, err := h.relations.Exists(ctx, relation.Key{ActorID: viewer, TargetID: targetID, Kind: kind})
		if err != nil {
			return nil, shared.StoreError("relation", "Status", err)
		}
		view.ViewerHasRelation = relation.Bool(held)
	}
	return view, nil
}
