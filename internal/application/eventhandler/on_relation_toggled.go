// Package eventhandler contains in-process subscribers for domain events.
package eventhandler

import (
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/metrics"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON RELATION TOGGLED HANDLER
// Counts completed toggles and writes an audit line per toggle.
// Runs on the event bus, so it never delays the toggle response.
// ═══════════════════════════════════════════════════════════════════════════

// OnRelationToggledHandler observes relation.toggled events.
type OnRelationToggledHandler struct {
	log *logger.Logger
}

// NewOnRelationToggledHandler creates a new handler.
func NewOnRelationToggledHandler(log *logger.Logger) *OnRelationToggledHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &OnRelationToggledHandler{
		log: log.With(logger.Component("on_relation_toggled")),
	}
}

// EventType returns the event type this handler subscribes to.
func (h *OnRelationToggledHandler) EventType() shared.EventType {
	return shared.EventRelationToggled
}

// Handle implements the event bus handler signature.
// Events of any other type are ignored.
func (h *OnRelationToggledHandler) Handle(event shared.Event) error {
	var ev shared.RelationToggledEvent
	switch e := event.(type) {
	case shared.RelationToggledEvent:
		ev = e
	case *shared.RelationToggledEvent:
		if e == nil {
			return nil
		}
		ev = *e
	default:
		return nil
	}

	metrics.RecordToggle(ev.Kind, ev.NowActive)

	h.log.Debug("relation toggled",
		logger.ActorID(ev.ActorID),
		logger.TargetID(ev.TargetID),
		logger.RelationKind(ev.Kind),
		logger.Bool("now_active", ev.NowActive),
		logger.String("correlation_id", ev.Correlation()),
	)
	return nil
}
