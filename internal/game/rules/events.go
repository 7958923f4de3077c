package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Turn flow events
	EventPhaseAdvanced EventType = "PHASE_ADVANCED"
	EventTurnStarted   EventType = "TURN_STARTED"
	EventMarchStep     EventType = "MARCH_STEP_CHANGED"
	EventActionStep    EventType = "ACTION_STEP_CHANGED"

	// March events
	EventActingArmyChosen  EventType = "ACTING_ARMY_CHOSEN"
	EventManeuverDeclined  EventType = "MANEUVER_DECLINED"
	EventManeuverRequested EventType = "MANEUVER_REQUESTED"
	EventManeuverResolved  EventType = "MANEUVER_RESOLVED"
	EventActionSelected    EventType = "ACTION_SELECTED"
	EventActionDeclined    EventType = "ACTION_DECLINED"

	// Action resolution events
	EventAttackerRollSubmitted EventType = "ATTACKER_ROLL_SUBMITTED"
	EventSaveRollSubmitted     EventType = "SAVE_ROLL_SUBMITTED"
	EventCounterRollSubmitted  EventType = "COUNTER_ROLL_SUBMITTED"
	EventDamageApplied         EventType = "DAMAGE_APPLIED"
	EventActionCompleted       EventType = "ACTION_COMPLETED"

	// Unit and army events
	EventUnitKilled     EventType = "UNIT_KILLED"
	EventUnitBuried     EventType = "UNIT_BURIED"
	EventUnitPromoted   EventType = "UNIT_PROMOTED"
	EventUnitResurrected EventType = "UNIT_RESURRECTED"
	EventUnitsMoved     EventType = "UNITS_MOVED"

	// Magic events
	EventSpellCast     EventType = "SPELL_CAST"
	EventEffectAdded   EventType = "EFFECT_ADDED"
	EventEffectExpired EventType = "EFFECT_EXPIRED"

	// Species ability events
	EventAbilityApplied EventType = "ABILITY_APPLIED"

	// Terrain events
	EventTerrainFaceChanged EventType = "TERRAIN_FACE_CHANGED"
	EventTerrainCaptured    EventType = "TERRAIN_CAPTURED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type      EventType
	Player    string
	Target    string
	Location  string
	Amount    int
	Data      string
	Timestamp time.Time
	Metadata  map[string]string
}

// NewEvent creates an event with common fields populated.
func NewEvent(eventType EventType, player, target string) Event {
	return Event{
		Type:      eventType,
		Player:    player,
		Target:    target,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates an event carrying a numeric value.
func NewEventWithAmount(eventType EventType, player, target string, amount int) Event {
	evt := NewEvent(eventType, player, target)
	evt.Amount = amount
	return evt
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with
// type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	if typed, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typed {
			listener.Callback(event)
		}
	}
}

// PublishBatch publishes multiple events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
