package events

import (
	"context"
	"errors"
	"testing"
)

type testEvent struct {
	BaseEvent
	Value int
}

func (testEvent) EventName() string { return "test.event" }

func TestPublishSyncDeliversToAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var got []int
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
			got = append(got, e.(testEvent).Value)
			return nil
		}))
	}

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), Value: 7})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("deliveries = %d, want 3", len(got))
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	wantErr := errors.New("handler failed")
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return wantErr }))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return nil }))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped handler error", err)
	}
}

func TestSubscribeIsEventNameScoped(t *testing.T) {
	bus := NewInMemoryBus(nil)

	called := false
	bus.Subscribe("other.event", HandlerFunc(func(context.Context, Event) error {
		called = true
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if called {
		t.Fatalf("handler for another event name must not fire")
	}
}
