// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"strings"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE RELATION COMMAND
// Flips a like or subscription for the current actor.
// Repeated and concurrent toggles converge: the store guarantees at most one
// relation per (actor, target, kind).
// ══════════════════════════════════════════════════════════════════════════════

// ToggleRelationCommand contains the data to toggle a relation.
type ToggleRelationCommand struct {
	// ActorID is the authenticated actor. Empty means anonymous.
	ActorID string

	// TargetID is the video, comment or channel id.
	TargetID string

	// Kind is the relation kind.
	Kind relation.Kind

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the command shape. Existence of the target is checked by the handler.
func (c ToggleRelationCommand) Validate() error {
	_, err := c.key()
	return err
}

// key canonicalizes both ids so that every textual alias of one uuid maps to the
// same relation row and the self-subscription rule compares like with like.
func (c ToggleRelationCommand) key() (relation.Key, error) {
	if !c.Kind.IsValid() {
		return relation.Key{}, shared.ErrUnknownRelationKind
	}
	if strings.TrimSpace(c.ActorID) == "" {
		return relation.Key{}, shared.ErrMissingActor
	}
	actor, err := shared.NewEntityID(c.ActorID)
	if err != nil {
		return relation.Key{}, shared.ErrInvalidActor
	}
	target, err := shared.NewEntityID(c.TargetID)
	if err != nil {
		return relation.Key{}, shared.ErrInvalidTarget
	}
	key := relation.Key{ActorID: actor.String(), TargetID: target.String(), Kind: c.Kind}
	if c.Kind.ForbidsSelf() && key.IsSelf() {
		return relation.Key{}, shared.ErrSelfSubscription
	}
	return key, nil
}

// ToggleRelationResult contains the state after the toggle.
type ToggleRelationResult struct {
	// NowActive is true when the relation exists after the call.
	NowActive bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ToggleRelationHandler handles the ToggleRelationCommand.
type ToggleRelationHandler struct {
	relations      relation.Store
	contents       content.Store
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewToggleRelationHandler creates a new ToggleRelationHandler.
// eventPublisher may be nil.
func NewToggleRelationHandler(
	relations relation.Store,
	contents content.Store,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *ToggleRelationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ToggleRelationHandler{
		relations:      relations,
		contents:       contents,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("toggle_relation")),
	}
}

// Handle executes the toggle. Validation failures never touch the relation store.
func (h *ToggleRelationHandler) Handle(ctx context.Context, cmd ToggleRelationCommand) (*ToggleRelationResult, error) {
	key, err := cmd.key()
	if err != nil {
		return nil, err
	}

	exists, err := h.contents.Exists(ctx, cmd.Kind.TargetKind(), key.TargetID)
	if err != nil {
		return nil, shared.StoreError("relation", "Toggle", err)
	}
	if !exists {
		return nil, shared.ErrTargetNotFound
	}

	// Delete first: a successful delete means the relation was active.
	deleted, err := h.relations.DeleteIfPresent(ctx, key)
	if err != nil {
		return nil, shared.StoreError("relation", "Toggle", err)
	}

	result := &ToggleRelationResult{NowActive: !deleted}
	if !deleted {
		// A concurrent toggle may have inserted between the two calls; created=false
		// still leaves the relation active.
		if _, err := h.relations.InsertIfAbsent(ctx, key); err != nil {
			return nil, shared.StoreError("relation", "Toggle", err)
		}
	}

	h.publish(cmd, key, result.NowActive)

	return result, nil
}

func (h *ToggleRelationHandler) publish(cmd ToggleRelationCommand, key relation.Key, nowActive bool) {
	if h.eventPublisher == nil {
		return
	}
	event := shared.NewRelationToggledEvent(key.ActorID, key.TargetID, key.Kind.String(), nowActive)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if err := h.eventPublisher.Publish(event); err != nil {
		h.log.Warn("failed to publish relation event",
			logger.Err(err),
			logger.ActorID(key.ActorID),
			logger.TargetID(key.TargetID),
			logger.RelationKind(key.Kind.String()),
		)
	}
}
