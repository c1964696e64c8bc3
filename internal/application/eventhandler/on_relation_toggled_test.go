package eventhandler

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/metrics"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

func TestOnRelationToggled_CountsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelDebug, Format: "json"})
	h := NewOnRelationToggledHandler(log)
	assert.Equal(t, shared.EventRelationToggled, h.EventType())

	counter := metrics.RelationTogglesTotal.WithLabelValues("comment_like", "true")
	before := testutil.ToFloat64(counter)

	ev := shared.NewRelationToggledEvent("alice", "c1", "comment_like", true)
	ev.BaseEvent = ev.BaseEvent.WithCorrelationID("req-7")
	require.NoError(t, h.Handle(ev))
	require.NoError(t, h.Handle(&ev))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	out := buf.String()
	assert.Contains(t, out, `"actor_id":"alice"`)
	assert.Contains(t, out, `"correlation_id":"req-7"`)
	assert.Contains(t, out, `"now_active":true`)
}

type otherEvent struct{ shared.BaseEvent }

func (otherEvent) Payload() map[string]interface{} { return nil }

func TestOnRelationToggled_IgnoresOtherEvents(t *testing.T) {
	h := NewOnRelationToggledHandler(nil)
	counter := metrics.RelationTogglesTotal.WithLabelValues("subscription", "false")
	before := testutil.ToFloat64(counter)

	assert.NoError(t, h.Handle(otherEvent{shared.NewBaseEvent("other.kind", "x")}))
	var nilEvent *shared.RelationToggledEvent
	assert.NoError(t, h.Handle(nilEvent))

	assert.Equal(t, before, testutil.ToFloat64(counter))
}
