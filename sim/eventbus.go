package sim

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// registered on one EventBus.
const MaxEventTypes = 256

// EventBus provides type-safe event dispatch between decoupled parts of one
// simulation instance. Its lifecycle is tied to the owning simulation, not to
// process-wide state; independent instances never interfere.
//
// Handlers are invoked synchronously in subscription order. Publishing with
// zero subscribers is a cheap no-op. Subscriptions should be established at
// setup time, before ticking starts; Publish itself is safe to call from
// systems running inside a batch as long as handlers confine their own
// mutations appropriately.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]busHandler
	nextEventTypeID uint8
	nextHandlerID   int
}

type busHandler struct {
	id int
	fn any
}

// Subscription identifies one registered handler so it can be deregistered.
type Subscription struct {
	bus    *EventBus
	typeID uint8
	id     int
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		eventTypeMap: make(map[reflect.Type]uint8),
	}
}

// Subscribe registers a handler for events of type T and returns a
// Subscription used to deregister it.
func Subscribe[T any](bus *EventBus, handler func(T)) Subscription {
	t := reflect.TypeFor[T]()
	typeID := bus.getEventTypeID(t)
	bus.nextHandlerID++
	bus.handlers[typeID] = append(bus.handlers[typeID], busHandler{
		id: bus.nextHandlerID,
		fn: handler,
	})
	return Subscription{bus: bus, typeID: typeID, id: bus.nextHandlerID}
}

// Cancel removes the subscribed handler. Calling Cancel twice is harmless.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	handlers := s.bus.handlers[s.typeID]
	for i, h := range handlers {
		if h.id == s.id {
			s.bus.handlers[s.typeID] = append(handlers[:i], handlers[i+1:]...)
			return
		}
	}
}

// Publish broadcasts an event of type T to all registered handlers in
// subscription order.
func Publish[T any](bus *EventBus, event T) {
	t := reflect.TypeFor[T]()
	if typeID, ok := bus.eventTypeMap[t]; ok {
		for _, h := range bus.handlers[typeID] {
			h.fn.(func(T))(event)
		}
	}
}

func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if typeID, ok := bus.eventTypeMap[t]; ok {
		return typeID
	}
	typeID := bus.nextEventTypeID
	if int(typeID) >= MaxEventTypes {
		panic("sim: too many event types")
	}
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = typeID
	return typeID
}
