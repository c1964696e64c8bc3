// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE VIEW BUILDER
// Attaches relation counts and the viewer flag to a batch of targets using
// two batched store reads, whatever the batch size.
// ══════════════════════════════════════════════════════════════════════════════

// ViewBuilder computes relation aggregates for a set of targets.
type ViewBuilder struct {
	relations relation.Store
}

// NewViewBuilder creates a ViewBuilder.
func NewViewBuilder(relations relation.Store) *ViewBuilder {
	return &ViewBuilder{relations: relations}
}

// BuildViews returns one AggregateView per distinct non-empty target id.
//
// viewerID "" means anonymous: ViewerHasRelation stays nil and the membership
// read is skipped. The count and membership reads run concurrently; if either
// fails the whole call fails.
func (b *ViewBuilder) BuildViews(ctx context.Context, targetIDs []string, kind relation.Kind, viewerID string) (map[string]relation.AggregateView, error) {
	ids := dedupe(targetIDs)
	views := make(map[string]relation.AggregateView, len(ids))
	if len(ids) == 0 {
		return views, nil
	}

	var (
		counts map[string]int64
		held   map[string]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = b.relations.CountByTargets(gctx, ids, kind)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			held, err = b.relations.ActorHasRelation(gctx, viewerID, ids, kind)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, shared.StoreError("relation", "BuildViews", err)
	}

	for _, id := range ids {
		view := relation.AggregateView{TargetID: id, RelationCount: counts[id]}
		if viewerID != "" {
			_, ok := held[id]
			view.ViewerHasRelation = relation.Bool(ok)
		}
		views[id] = view
	}
	return views, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// canonicalViewer maps any uuid spelling of the viewer to the form relations
// are stored under. "" stays anonymous.
func canonicalViewer(raw string) (string, error) {
	id, err := shared.CanonicalOptionalID(raw)
	if err != nil {
		return "", shared.ErrInvalidActor
	}
	return id, nil
}
