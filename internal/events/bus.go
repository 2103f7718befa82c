package events

import (
	"github.com/kelindar/event"
)

// Bus broadcasts bridge session events to in-process subscribers.
// A nil *Bus is valid: publishing to it does nothing and subscribing
// returns a no-op unsubscribe.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Publish delivers ev to every subscriber registered for T.
//
//	events.Publish(bus, events.StateChangedEvent{SessionID: id, To: "connected"})
func Publish[T Event](b *Bus, ev T) {
	if b == nil {
		return
	}
	event.Publish(b.dispatcher, ev)
}

// Subscribe registers fn for events of type T and returns the function
// that removes it.
//
//	defer events.Subscribe(bus, func(e events.SessionClosedEvent) { ... })()
func Subscribe[T Event](b *Bus, fn func(T)) func() {
	if b == nil {
		return func() {}
	}
	return event.Subscribe(b.dispatcher, fn)
}
