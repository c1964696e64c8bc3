package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSEMBLE FEED QUERY
// One page of videos, comments or channels with engagement aggregates.
// ══════════════════════════════════════════════════════════════════════════════

// AssembleFeedQuery holds raw listing parameters as received from the client.
type AssembleFeedQuery struct {
	// Kind is the content collection: videos, comments or channels.
	Kind string

	Filter content.Filter

	// Page is 1-based.
	Page  int
	Limit int

	// SortField must be in the kind's allow-list; empty means createdAt.
	SortField string

	// Direction is asc, desc or dsc; empty means desc.
	Direction string

	// ViewerID is the current actor, "" for anonymous.
	ViewerID string
}

// PageEnvelope is one page of a feed.
type PageEnvelope struct {
	Items         []FeedItem           `json:"items"`
	TotalCount    int64                `json:"total_count"`
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	SortField     string               `json:"sort_field"`
	SortDirection shared.SortDirection `json:"sort_direction"`
	HasMore       bool                 `json:"has_more"`
}

// AssembleFeedHandler answers AssembleFeedQuery.
type AssembleFeedHandler struct {
	contents content.Store
	views    *ViewBuilder
	present  presenter
	log      *logger.Logger
}

// NewAssembleFeedHandler creates a new AssembleFeedHandler.
func NewAssembleFeedHandler(contents content.Store, views *ViewBuilder, assets content.AssetResolver, log *logger.Logger) *AssembleFeedHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AssembleFeedHandler{
		contents: contents,
		views:    views,
		present:  presenter{assets: assets},
		log:      log.With(logger.Component("assemble_feed")),
	}
}

type feedPlan struct {
	query        content.Query
	relationKind relation.Kind
	pagination   shared.Pagination
	sortField    string
	viewerID     string
}

func (h *AssembleFeedHandler) plan(q AssembleFeedQuery) (*feedPlan, error) {
	kind, err := content.ParseKind(q.Kind)
	if err != nil {
		return nil, err
	}
	pagination, err := shared.NewPagination(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	col, err := content.ResolveSort(kind, q.SortField)
	if err != nil {
		return nil, err
	}
	dir, err := shared.ParseSortDirection(q.Direction)
	if err != nil {
		return nil, err
	}
	filter, err := q.Filter.Normalize(kind)
	if err != nil {
		return nil, err
	}
	viewer, err := canonicalViewer(q.ViewerID)
	if err != nil {
		return nil, err
	}
	relKind, err := relation.ForContent(kind)
	if err != nil {
		return nil, err
	}

	// Drafts are visible only when an owner lists their own videos.
	filter.IncludeUnpublished = viewer != "" && filter.OwnerID == viewer

	sortField := q.SortField
	if sortField == "" {
		sortField = content.DefaultSortField
	}

	return &feedPlan{
		query: content.Query{
			Kind:      kind,
			Filter:    filter,
			Sort:      col,
			Direction: dir,
			Skip:      pagination.Offset(),
			Take:      pagination.Limit(),
		},
		relationKind: relKind,
		pagination:   pagination,
		sortField:    sortField,
		viewerID:     viewer,
	}, nil
}

// Handle runs the listing. A page past the end returns no items with the correct total.
func (h *AssembleFeedHandler) Handle(ctx context.Context, q AssembleFeedQuery) (*PageEnvelope, error) {
	p, err := h.plan(q)
	if err != nil {
		return nil, err
	}

	var (
		items []content.Item
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = h.contents.Query(gctx, p.query)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.contents.Count(gctx, p.query.Kind, p.query.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Error("feed content read failed", logger.Err(err), logger.ContentKind(p.query.Kind.String()))
		return nil, shared.StoreError("feed", "Query", err)
	}

	var (
		views  map[string]relation.AggregateView
		owners map[string]content.Item
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		views, err = h.views.BuildViews(gctx, content.IDs(items), p.relationKind, p.viewerID)
		if err != nil {
			h.log.Error("feed aggregates failed", logger.Err(err), logger.ContentKind(p.query.Kind.String()))
		}
		return err
	})
	if ids := ownerIDs(items); len(ids) > 0 {
		g.Go(func() error {
			var err error
			owners, err = h.contents.GetByIDs(gctx, content.KindChannel, ids)
			if err != nil {
				h.log.Error("feed owner lookup failed", logger.Err(err), logger.ContentKind(p.query.Kind.String()))
				return shared.StoreError("feed", "GetByIDs", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]FeedItem, 0, len(items))
	for _, it := range items {
		out = append(out, h.present.item(it, views[it.ItemID()], owners))
	}

	return &PageEnvelope{
		Items:         out,
		TotalCount:    total,
		Page:          p.pagination.Page,
		Limit:         p.pagination.Limit(),
		SortField:     p.sortField,
		SortDirection: p.query.Direction,
		HasMore:       int64(p.pagination.Offset()+len(out)) < total,
	}, nil
}

// ownerIDs returns the distinct owners of the videos and comments in items.
func ownerIDs(items []content.Item) []string {
	seen := make(map[string]struct{}, len(items))
	var ids []string
	for _, it := range items {
		var owner string
		switch v := it.(type) {
		case *content.Video:
			owner = v.OwnerID
		case *content.Comment:
			owner = v.OwnerID
		default:
			continue
		}
		if _, ok := seen[owner]; ok || owner == "" {
			continue
		}
		seen[owner] = struct{}{}
		ids = append(ids, owner)
	}
	return ids
}
