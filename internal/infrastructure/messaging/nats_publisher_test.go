package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

type recordingConn struct {
	mu    sync.Mutex
	msgs  []*nats.Msg
	fails int
}

func (c *recordingConn) PublishMsg(m *nats.Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fails > 0 {
		c.fails--
		return nats.ErrConnectionReconnecting
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func TestNATSPublisher_Subject(t *testing.T) {
	assert.Equal(t, "engagement.relation.toggled", NewNATSPublisher(&recordingConn{}, "engagement.", nil).Subject(shared.EventRelationToggled))
	assert.Equal(t, "relation.toggled", NewNATSPublisher(&recordingConn{}, "", nil).Subject(shared.EventRelationToggled))
}

func TestNATSPublisher_PublishesEnvelope(t *testing.T) {
	conn := &recordingConn{}
	p := NewNATSPublisher(conn, "engagement", nil)

	ev := shared.NewRelationToggledEvent("actor-1", "target-1", "SUBSCRIPTION", false)
	ev.BaseEvent = ev.BaseEvent.WithCorrelationID("req-42")
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, conn.msgs, 1)
	msg := conn.msgs[0]
	assert.Equal(t, "engagement.relation.toggled", msg.Subject)
	assert.Equal(t, "relation.toggled", msg.Header.Get(HeaderEventType))
	assert.Equal(t, "req-42", msg.Header.Get(HeaderCorrelationID))
	assert.NotEmpty(t, msg.Header.Get(HeaderEventID))

	var env shared.EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, "target-1", env.AggregateID)
	assert.Equal(t, msg.Header.Get(HeaderEventID), env.ID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "actor-1", payload["actor_id"])
	assert.Equal(t, false, payload["now_active"])
}

func TestNATSPublisher_RetriesTransientFailures(t *testing.T) {
	conn := &recordingConn{fails: 2}
	p := NewNATSPublisher(conn, "engagement", nil)

	require.NoError(t, p.Handle(toggled()))
	assert.Len(t, conn.msgs, 1)
}

func TestNATSPublisher_GivesUp(t *testing.T) {
	conn := &recordingConn{fails: 10}
	p := NewNATSPublisher(conn, "engagement", nil)

	err := p.Publish(context.Background(), toggled())
	require.Error(t, err)
	assert.True(t, errors.Is(err, nats.ErrConnectionReconnecting))
	assert.Empty(t, conn.msgs)
}
