package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishReachesAllListeners(t *testing.T) {
	bus := NewEventBus()

	var seen []EventType
	bus.Subscribe(func(evt Event) {
		seen = append(seen, evt.Type)
	})

	bus.Publish(NewEvent(EventPhaseAdvanced, "Alice", ""))
	bus.Publish(NewEventWithAmount(EventDamageApplied, "Alice", "Bob", 3))

	require.Len(t, seen, 2)
	assert.Equal(t, EventPhaseAdvanced, seen[0])
	assert.Equal(t, EventDamageApplied, seen[1])
}

func TestEventBusTypedSubscription(t *testing.T) {
	bus := NewEventBus()

	kills := 0
	bus.SubscribeTyped(EventUnitKilled, func(evt Event) {
		kills += evt.Amount
	})

	bus.Publish(NewEventWithAmount(EventUnitKilled, "Alice", "Bob", 2))
	bus.Publish(NewEventWithAmount(EventDamageApplied, "Alice", "Bob", 5))

	assert.Equal(t, 2, kills)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	count := 0
	handle := bus.Subscribe(func(Event) { count++ })
	typedHandle := bus.SubscribeTyped(EventSpellCast, func(Event) { count++ })

	bus.Publish(NewEvent(EventSpellCast, "Alice", ""))
	require.Equal(t, 2, count)

	bus.Unsubscribe(handle)
	bus.Unsubscribe(typedHandle)
	bus.Publish(NewEvent(EventSpellCast, "Alice", ""))
	assert.Equal(t, 2, count)
}

func TestEventBusNilListener(t *testing.T) {
	bus := NewEventBus()
	assert.Equal(t, -1, bus.Subscribe(nil))
	assert.Equal(t, -1, bus.SubscribeTyped(EventSpellCast, nil))
}

func TestPublishBatchPreservesOrder(t *testing.T) {
	bus := NewEventBus()

	var amounts []int
	bus.Subscribe(func(evt Event) { amounts = append(amounts, evt.Amount) })

	bus.PublishBatch([]Event{
		NewEventWithAmount(EventDamageApplied, "Alice", "Bob", 1),
		NewEventWithAmount(EventDamageApplied, "Alice", "Bob", 2),
		NewEventWithAmount(EventDamageApplied, "Alice", "Bob", 3),
	})

	assert.Equal(t, []int{1, 2, 3}, amounts)
}
