// pkg/engine/session.go
package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/go-topdown/pkg/config"
	"github.com/opd-ai/go-topdown/pkg/event"
	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/logging"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// DefaultMaxDeltaTime caps a single tick's elapsed time, in seconds
const DefaultMaxDeltaTime = 0.1

// ErrInvalidRate is returned by Run for a non-positive tick rate
var ErrInvalidRate = errors.New("tick rate must be positive")

// Session is the host-facing driver for one Controller. It owns the
// held-input state and the aim point, applies input events, and publishes
// a TickCompleted event after every step. All methods are safe for
// concurrent use; input updates and ticks never interleave.
type Session struct {
	mu         sync.Mutex
	controller *Controller
	input      *input.State
	aim        physics.Vector2D
	running    bool

	// MaxDeltaTime caps dt passed to Advance. Set before the first tick.
	MaxDeltaTime float64

	EventBus *event.Bus
	logger   *logging.Logger
	subs     []*event.Subscription
}

// NewSession wraps controller. A nil bus gets a private one; a nil
// logger discards output.
func NewSession(controller *Controller, bus *event.Bus, logger *logging.Logger) *Session {
	if bus == nil {
		bus = event.NewEventBus()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Session{
		controller:   controller,
		input:        input.NewState(),
		aim:          restingAim(controller.State(), controller.Tuning()),
		MaxDeltaTime: DefaultMaxDeltaTime,
		EventBus:     bus,
		logger:       logger.With("component", "session"),
	}
}

// NewSessionFromConfig builds the controller from cfg and applies the
// configured delta-time cap.
func NewSessionFromConfig(cfg *config.Config, bus *event.Bus, logger *logging.Logger) (*Session, error) {
	controller, err := NewController(cfg)
	if err != nil {
		return nil, err
	}
	s := NewSession(controller, bus, logger)
	s.MaxDeltaTime = cfg.Loop.MaxDeltaTime
	return s, nil
}

// Press marks sym as held
func (s *Session) Press(sym input.Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input.Press(sym)
}

// Release marks sym as no longer held
func (s *Session) Release(sym input.Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input.Release(sym)
}

// SetAim moves the aim point. Non-finite points are dropped.
func (s *Session) SetAim(target physics.Vector2D) {
	if !target.IsFinite() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aim = target
}

// HandleEvent applies KeyPressed, KeyReleased and AimMoved events and
// ignores everything else.
func (s *Session) HandleEvent(e event.Event) {
	switch ev := e.(type) {
	case *event.KeyEvent:
		switch ev.GetType() {
		case event.KeyPressed:
			s.Press(ev.Symbol)
		case event.KeyReleased:
			s.Release(ev.Symbol)
		}
	case *event.AimEvent:
		s.SetAim(ev.Target)
	}
}

// Attach subscribes the session to input events on bus. Calling Attach
// again replaces the previous subscriptions.
func (s *Session) Attach(bus *event.Bus) {
	s.Detach()

	subs := []*event.Subscription{
		bus.Subscribe(event.KeyPressed, s.HandleEvent),
		bus.Subscribe(event.KeyReleased, s.HandleEvent),
		bus.Subscribe(event.AimMoved, s.HandleEvent),
	}

	s.mu.Lock()
	s.subs = subs
	s.mu.Unlock()
}

// Detach cancels the subscriptions made by Attach
func (s *Session) Detach() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// Advance runs one simulation step and publishes TickCompleted. dt is
// clamped to [0, MaxDeltaTime]; non-finite values become 0.
func (s *Session) Advance(dt float64) physics.MovementState {
	s.mu.Lock()
	dt = s.clampDelta(dt)
	held := s.input.Snapshot()
	state := s.controller.Step(held, s.aim, dt)
	s.input.ClearPressed()
	tick := s.controller.Tick()
	intent := s.controller.Intent()
	s.mu.Unlock()

	// published outside the lock so handlers may call back into the session
	s.EventBus.Publish(event.NewTickEvent(s, tick, dt, intent, state))
	return state
}

func (s *Session) clampDelta(dt float64) float64 {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}
	if dt > s.MaxDeltaTime {
		return s.MaxDeltaTime
	}
	return dt
}

// Run advances the session at rate ticks per second until ctx is
// cancelled, deriving dt from the wall clock. It returns nil on
// cancellation.
func (s *Session) Run(ctx context.Context, rate int) error {
	if rate <= 0 {
		return ErrInvalidRate
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("session already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info(ctx, "session started", "tick_rate", rate)
	s.EventBus.Publish(&event.BaseEvent{EventType: event.SessionStarted, Source: s})

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "session stopped", "ticks", s.Tick())
			s.EventBus.Publish(&event.BaseEvent{EventType: event.SessionStopped, Source: s})
			return nil
		case now := <-ticker.C:
			s.Advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

// State returns a copy of the current movement state
func (s *Session) State() physics.MovementState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.controller.State()
}

// Position returns the current position
func (s *Session) Position() physics.Vector2D { return s.State().Position }

// Velocity returns the current velocity
func (s *Session) Velocity() physics.Vector2D { return s.State().Velocity }

// Facing returns the current facing angle in radians
func (s *Session) Facing() float64 { return s.State().Facing }

// Tick returns the number of steps taken
func (s *Session) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.controller.Tick()
}

// Aim returns the current aim point
func (s *Session) Aim() physics.Vector2D {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.aim
}

// Held returns a snapshot of the held input symbols
func (s *Session) Held() input.Held {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.input.Snapshot()
}

// Mapping returns the controller's direction mapping
func (s *Session) Mapping() input.DirectionMapping {
	return s.controller.Mapping()
}
