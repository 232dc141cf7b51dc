// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Type represents the type of event
type Type string

// Event types exchanged between hosts and the simulation session
const (
	KeyPressed     Type = "key_pressed"
	KeyReleased    Type = "key_released"
	AimMoved       Type = "aim_moved"
	TickCompleted  Type = "tick_completed"
	SessionStarted Type = "session_started"
	SessionStopped Type = "session_stopped"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is a registered handler. Cancel removes it from the bus
// and is safe to call more than once.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id. It reports
// whether a handler was removed.
func (b *Bus) Unsubscribe(eventType Type, id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id != id {
			continue
		}
		// Copy so that a Publish iterating the old slice is unaffected
		next := make([]registration, 0, len(regs)-1)
		next = append(next, regs[:i]...)
		next = append(next, regs[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, eventType)
		} else {
			b.handlers[eventType] = next
		}
		return true
	}
	return false
}

// Publish sends an event to all subscribed handlers. Handlers run
// synchronously on the caller's goroutine in subscription order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// KeyEvent reports a press or release of an input symbol
type KeyEvent struct {
	BaseEvent
	Symbol input.Symbol
}

// NewKeyEvent creates a KeyPressed or KeyReleased event
func NewKeyEvent(eventType Type, source interface{}, symbol input.Symbol) *KeyEvent {
	return &KeyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Symbol: symbol,
	}
}

// AimEvent carries a new aim point in world coordinates
type AimEvent struct {
	BaseEvent
	Target physics.Vector2D
}

// NewAimEvent creates an AimMoved event
func NewAimEvent(source interface{}, target physics.Vector2D) *AimEvent {
	return &AimEvent{
		BaseEvent: BaseEvent{
			EventType: AimMoved,
			Source:    source,
		},
		Target: target,
	}
}

// TickEvent is published after each simulation step. Intent is the raw
// resolved input for the tick; State is the state after it.
type TickEvent struct {
	BaseEvent
	Tick   uint64
	DT     float64
	Intent physics.Vector2D
	State  physics.MovementState
}

// NewTickEvent creates a TickCompleted event
func NewTickEvent(source interface{}, tick uint64, dt float64, intent physics.Vector2D, state physics.MovementState) *TickEvent {
	return &TickEvent{
		BaseEvent: BaseEvent{
			EventType: TickCompleted,
			Source:    source,
		},
		Tick:   tick,
		DT:     dt,
		Intent: intent,
		State:  state,
	}
}
