package messaging

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

func toggled() shared.Event {
	return shared.NewRelationToggledEvent("actor", "target", "VIDEO_LIKE", true)
}

func TestInMemoryEventBus_SyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	var typed, all int
	require.NoError(t, bus.Subscribe(shared.EventRelationToggled, func(shared.Event) error { typed++; return nil }))
	require.NoError(t, bus.Subscribe("other.event", func(shared.Event) error { t.Fatal("wrong type"); return nil }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { all++; return nil }))

	require.NoError(t, bus.Publish(toggled()))
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, all)
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	var reached bool
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { panic("boom") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return errors.New("nope") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { reached = true; return nil }))

	assert.NoError(t, bus.Publish(toggled()))
	assert.True(t, reached)
}

func TestInMemoryEventBus_AsyncDeliveryCompletesBeforeClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var n atomic.Int64
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { n.Add(1); return nil }))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(toggled())
		}()
	}
	wg.Wait()
	require.NoError(t, bus.Close())

	assert.LessOrEqual(t, n.Load(), int64(20))
	assert.ErrorIs(t, bus.Publish(toggled()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_RejectsNil(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()

	assert.Error(t, bus.Publish(nil))
	assert.Error(t, bus.Subscribe(shared.EventRelationToggled, nil))
}
