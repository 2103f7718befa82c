package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	var zero T
	return zero
}

func expectNone[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected event %+v", v)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	bus := New()
	got := make(chan StateChangedEvent, 1)
	defer Subscribe(bus, func(e StateChangedEvent) { got <- e })()

	Publish(bus, StateChangedEvent{SessionID: "s1", From: "waiting", To: "connected"})

	e := recv(t, got)
	if e.SessionID != "s1" || e.To != "connected" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestEverySubscriberReceives(t *testing.T) {
	bus := New()
	a := make(chan SessionOpenedEvent, 1)
	b := make(chan SessionOpenedEvent, 1)
	defer Subscribe(bus, func(e SessionOpenedEvent) { a <- e })()
	defer Subscribe(bus, func(e SessionOpenedEvent) { b <- e })()

	Publish(bus, SessionOpenedEvent{SessionID: "s1", PID: 42})

	if recv(t, a).PID != 42 || recv(t, b).PID != 42 {
		t.Error("both subscribers should see pid 42")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New()
	got := make(chan InboundLineEvent, 1)
	unsub := Subscribe(bus, func(e InboundLineEvent) { got <- e })

	Publish(bus, InboundLineEvent{Line: "RUBY2D_Connect"})
	recv(t, got)

	unsub()
	Publish(bus, InboundLineEvent{Line: "RUBY2D_Close"})
	expectNone(t, got)
}

func TestSubscribersFilteredByType(t *testing.T) {
	bus := New()
	states := make(chan StateChangedEvent, 1)
	lines := make(chan InboundLineEvent, 1)
	defer Subscribe(bus, func(e StateChangedEvent) { states <- e })()
	defer Subscribe(bus, func(e InboundLineEvent) { lines <- e })()

	Publish(bus, StateChangedEvent{To: "closed_by_client"})
	recv(t, states)
	expectNone(t, lines)

	Publish(bus, InboundLineEvent{Line: "RUBY2D KeyEvent esc"})
	recv(t, lines)
	expectNone(t, states)
}

func TestConcurrentPublish(t *testing.T) {
	bus := New()
	const publishers, perPublisher = 8, 50
	got := make(chan struct{}, publishers*perPublisher)
	defer Subscribe(bus, func(InboundLineEvent) { got <- struct{}{} })()

	var wg sync.WaitGroup
	for range publishers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perPublisher {
				Publish(bus, InboundLineEvent{Line: "x", Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()

	for range publishers * perPublisher {
		recv(t, got)
	}
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	Publish(bus, SessionClosedEvent{SessionID: "s1"})
	unsub := Subscribe(bus, func(SessionClosedEvent) {})
	unsub()
	SubscribeToChannel[SessionClosedEvent](bus, make(chan SessionClosedEvent))()
}

func TestEventTypesDistinct(t *testing.T) {
	seen := map[uint32]string{}
	for name, e := range map[string]Event{
		"opened":  SessionOpenedEvent{},
		"state":   StateChangedEvent{},
		"inbound": InboundLineEvent{},
		"closed":  SessionClosedEvent{},
	} {
		if prev, dup := seen[e.Type()]; dup {
			t.Errorf("%s and %s share type %d", name, prev, e.Type())
		}
		seen[e.Type()] = name
	}
}

func TestSessionClosedJSON(t *testing.T) {
	data, err := json.Marshal(SessionClosedEvent{
		SessionID: "s1",
		State:     "closed_by_client",
		ExitCode:  137,
		Timestamp: time.Date(2025, 1, 27, 10, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["state"] != "closed_by_client" || out["exit_code"] != float64(137) {
		t.Errorf("unexpected json %s", data)
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan StateChangedEvent, 4)
	defer SubscribeToChannel[StateChangedEvent](bus, ch)()

	Publish(bus, StateChangedEvent{SessionID: "s1", To: "connected"})

	if e := recv(t, ch); e.To != "connected" {
		t.Errorf("expected connected, got %s", e.To)
	}
}

func TestSubscribeToChannelDropsWhenFull(t *testing.T) {
	bus := New()
	ch := make(chan InboundLineEvent)
	defer SubscribeToChannel[InboundLineEvent](bus, ch)()

	done := make(chan struct{})
	go func() {
		Publish(bus, InboundLineEvent{Line: "x"})
		close(done)
	}()
	recv(t, done)
}

func TestForwardMixesTypes(t *testing.T) {
	bus := New()
	ch := make(chan any, 4)
	defer Forward[StateChangedEvent](bus, ch)()
	defer Forward[SessionClosedEvent](bus, ch)()

	Publish(bus, StateChangedEvent{To: "connected"})
	if _, ok := recv(t, ch).(StateChangedEvent); !ok {
		t.Error("expected StateChangedEvent")
	}
	Publish(bus, SessionClosedEvent{State: "connected"})
	if _, ok := recv(t, ch).(SessionClosedEvent); !ok {
		t.Error("expected SessionClosedEvent")
	}
}
