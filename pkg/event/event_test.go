// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"

	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// TestNewEventBus tests the creation of a new event bus
func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	if bus == nil {
		t.Fatal("NewEventBus() returned nil")
	}

	if bus.handlers == nil {
		t.Error("handlers map not initialized")
	}

	if bus.nextID != 1 {
		t.Errorf("expected nextID to be 1, got %d", bus.nextID)
	}
}

// TestBaseEvent tests the BaseEvent functionality
func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
	}{
		{
			name:      "KeyPressed event",
			eventType: KeyPressed,
			source:    "test_source",
		},
		{
			name:      "AimMoved event",
			eventType: AimMoved,
			source:    123,
		},
		{
			name:      "Empty source",
			eventType: SessionStarted,
			source:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &BaseEvent{
				EventType: tt.eventType,
				Source:    tt.source,
			}

			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}

			if event.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", event.GetSource(), tt.source)
			}
		})
	}
}

// TestBusSubscribe tests event subscription functionality
func TestBusSubscribe_SingleHandler_ReturnsValidSubscription(t *testing.T) {
	bus := NewEventBus()

	sub := bus.Subscribe(KeyPressed, func(e Event) {})

	if sub == nil {
		t.Fatal("Subscribe() returned nil subscription")
	}

	if sub.ID == 0 {
		t.Error("subscription ID should not be 0")
	}

	if sub.Type != KeyPressed {
		t.Errorf("subscription Type = %v, want %v", sub.Type, KeyPressed)
	}

	if sub.Cancel == nil {
		t.Error("subscription Cancel function should not be nil")
	}

	bus.mu.RLock()
	handlers := bus.handlers[KeyPressed]
	bus.mu.RUnlock()

	if len(handlers) != 1 {
		t.Errorf("expected 1 handler, got %d", len(handlers))
	}
}

// TestBusSubscribe_MultipleHandlers tests multiple subscriptions
func TestBusSubscribe_MultipleHandlers_AllRegistered(t *testing.T) {
	bus := NewEventBus()

	sub1 := bus.Subscribe(KeyPressed, func(e Event) {})
	sub2 := bus.Subscribe(KeyPressed, func(e Event) {})
	_ = bus.Subscribe(AimMoved, func(e Event) {})

	if sub1.ID == sub2.ID {
		t.Error("subscriptions should have unique IDs")
	}

	bus.mu.RLock()
	keyHandlers := bus.handlers[KeyPressed]
	aimHandlers := bus.handlers[AimMoved]
	bus.mu.RUnlock()

	if len(keyHandlers) != 2 {
		t.Errorf("expected 2 handlers for KeyPressed, got %d", len(keyHandlers))
	}

	if len(aimHandlers) != 1 {
		t.Errorf("expected 1 handler for AimMoved, got %d", len(aimHandlers))
	}
}

// TestBusPublish tests event publishing functionality
func TestBusPublish_WithSubscribers_CallsAllHandlersInOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int

	bus.Subscribe(TickCompleted, func(e Event) { order = append(order, 1) })
	bus.Subscribe(TickCompleted, func(e Event) { order = append(order, 2) })

	bus.Publish(NewTickEvent("test", 1, 0.016, physics.Vector2D{}, physics.MovementState{}))

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handler order = %v, want [1 2]", order)
	}
}

// TestBusPublish_NoSubscribers tests publishing without subscribers
func TestBusPublish_NoSubscribers_NoError(t *testing.T) {
	bus := NewEventBus()

	// Should not panic or error
	bus.Publish(&BaseEvent{EventType: SessionStopped, Source: "test"})
}

// TestBusPublish_WrongEventType tests publishing to non-subscribed event type
func TestBusPublish_WrongEventType_HandlersNotCalled(t *testing.T) {
	bus := NewEventBus()
	handlerCalled := false

	bus.Subscribe(KeyPressed, func(e Event) { handlerCalled = true })
	bus.Publish(NewKeyEvent(KeyReleased, "test", "W"))

	if handlerCalled {
		t.Error("handler should not have been called for different event type")
	}
}

// TestSubscriptionCancel tests canceling subscriptions
func TestSubscriptionCancel_ValidSubscription_RemovesHandler(t *testing.T) {
	bus := NewEventBus()
	handlerCalled := false

	sub := bus.Subscribe(KeyPressed, func(e Event) { handlerCalled = true })

	sub.Cancel()
	// second cancel is a no-op
	sub.Cancel()

	bus.mu.RLock()
	handlersAfter := len(bus.handlers[KeyPressed])
	bus.mu.RUnlock()

	if handlersAfter != 0 {
		t.Errorf("expected 0 handlers after cancel, got %d", handlersAfter)
	}

	bus.Publish(NewKeyEvent(KeyPressed, "test", "W"))

	if handlerCalled {
		t.Error("handler should not be called after cancellation")
	}
}

func TestBusUnsubscribe_ByID(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	first := bus.Subscribe(AimMoved, func(e Event) { calls = append(calls, "first") })
	bus.Subscribe(AimMoved, func(e Event) { calls = append(calls, "second") })

	if !bus.Unsubscribe(AimMoved, first.ID) {
		t.Fatal("Unsubscribe() should report removal")
	}
	if bus.Unsubscribe(AimMoved, first.ID) {
		t.Error("Unsubscribe() of a removed ID should report false")
	}
	if bus.Unsubscribe(KeyPressed, first.ID) {
		t.Error("Unsubscribe() with the wrong type should report false")
	}

	bus.Publish(NewAimEvent("test", physics.Vector2D{X: 1, Y: 2}))

	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("calls = %v, want [second]", calls)
	}
}

func TestBusPublish_HandlerMayCancelDuringDispatch(t *testing.T) {
	bus := NewEventBus()
	count := 0

	var sub *Subscription
	sub = bus.Subscribe(TickCompleted, func(e Event) {
		count++
		sub.Cancel()
	})
	bus.Subscribe(TickCompleted, func(e Event) { count++ })

	bus.Publish(NewTickEvent(nil, 1, 0, physics.Vector2D{}, physics.MovementState{}))
	bus.Publish(NewTickEvent(nil, 2, 0, physics.Vector2D{}, physics.MovementState{}))

	if count != 3 {
		t.Errorf("expected 3 handler calls, got %d", count)
	}
}

// TestConcurrentAccess tests thread safety
func TestBusSubscribe_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	handlerCount := 0
	var mu sync.Mutex

	handler := func(e Event) {
		mu.Lock()
		handlerCount++
		mu.Unlock()
	}

	numGoroutines := 10
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			bus.Subscribe(KeyPressed, handler)
		}()
	}

	wg.Wait()

	bus.mu.RLock()
	handlers := bus.handlers[KeyPressed]
	bus.mu.RUnlock()

	if len(handlers) != numGoroutines {
		t.Errorf("expected %d handlers, got %d", numGoroutines, len(handlers))
	}

	event := NewKeyEvent(KeyPressed, "test", "W")

	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			bus.Publish(event)
		}()
	}

	wg.Wait()

	mu.Lock()
	expectedCalls := numGoroutines * 3
	if handlerCount != expectedCalls {
		t.Errorf("expected %d handler calls, got %d", expectedCalls, handlerCount)
	}
	mu.Unlock()
}

// TestNewKeyEvent tests key event creation
func TestNewKeyEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
		symbol    input.Symbol
	}{
		{
			name:      "Key pressed event",
			eventType: KeyPressed,
			source:    "engo_input",
			symbol:    "W",
		},
		{
			name:      "Key released event",
			eventType: KeyReleased,
			source:    nil,
			symbol:    "D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewKeyEvent(tt.eventType, tt.source, tt.symbol)

			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}

			if event.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", event.GetSource(), tt.source)
			}

			if event.Symbol != tt.symbol {
				t.Errorf("Symbol = %v, want %v", event.Symbol, tt.symbol)
			}
		})
	}
}

// TestNewAimEvent tests aim event creation
func TestNewAimEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	target := physics.Vector2D{X: -12.5, Y: 40}

	event := NewAimEvent("mouse", target)

	if event.GetType() != AimMoved {
		t.Errorf("GetType() = %v, want %v", event.GetType(), AimMoved)
	}

	if event.Target != target {
		t.Errorf("Target = %v, want %v", event.Target, target)
	}
}

// TestNewTickEvent tests tick event creation
func TestNewTickEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	state := physics.MovementState{
		Position: physics.Vector2D{X: 1, Y: 2},
		Velocity: physics.Vector2D{X: 0.5, Y: 0},
		Facing:   0.25,
		MaxSpeed: 5,
	}

	intent := physics.Vector2D{X: 1, Y: -1}
	event := NewTickEvent("session", 42, 0.02, intent, state)

	if event.GetType() != TickCompleted {
		t.Errorf("GetType() = %v, want %v", event.GetType(), TickCompleted)
	}

	if event.Tick != 42 || event.DT != 0.02 {
		t.Errorf("Tick/DT = %d/%v, want 42/0.02", event.Tick, event.DT)
	}

	if event.Intent != intent {
		t.Errorf("Intent = %v, want %v", event.Intent, intent)
	}

	if event.State != state {
		t.Errorf("State = %+v, want %+v", event.State, state)
	}
}

// TestEventTypes tests that all event type constants are properly defined
func TestEventTypes_Constants_AllDistinct(t *testing.T) {
	expectedTypes := []Type{
		KeyPressed,
		KeyReleased,
		AimMoved,
		TickCompleted,
		SessionStarted,
		SessionStopped,
	}

	seen := make(map[Type]bool)
	for _, eventType := range expectedTypes {
		if string(eventType) == "" {
			t.Errorf("event type %v is empty", eventType)
		}
		if seen[eventType] {
			t.Errorf("event type %v is duplicated", eventType)
		}
		seen[eventType] = true
	}
}
