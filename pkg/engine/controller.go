// pkg/engine/controller.go
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-topdown/pkg/config"
	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/logging"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// ErrInvalidState is returned when a starting state is not usable
var ErrInvalidState = errors.New("invalid movement state")

// Controller owns the movement state of one entity and is its only
// mutator. It is not safe for concurrent use; Session serializes access.
type Controller struct {
	state   physics.MovementState
	tuning  physics.Tuning
	mapping input.DirectionMapping

	tick       uint64
	lastAim    physics.Vector2D
	lastIntent physics.Vector2D
}

// NewController builds a controller from a validated configuration
func NewController(cfg *config.Config) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, logging.WrapError(err, "invalid configuration")
	}

	// Validate has already checked both conversions
	tuning, _ := cfg.Tuning()
	mapping, _ := cfg.Mapping()

	return NewControllerWith(cfg.StartState(), tuning, mapping)
}

// NewControllerWith builds a controller from explicit parts
func NewControllerWith(start physics.MovementState, tuning physics.Tuning, mapping input.DirectionMapping) (*Controller, error) {
	if !(start.MaxSpeed > 0) || math.IsInf(start.MaxSpeed, 0) {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidMaxSpeed, start.MaxSpeed)
	}
	if !start.Position.IsFinite() || !start.Velocity.IsFinite() ||
		math.IsNaN(start.Facing) || math.IsInf(start.Facing, 0) {
		return nil, fmt.Errorf("%w: non-finite component", ErrInvalidState)
	}
	if start.Speed() > start.MaxSpeed {
		return nil, fmt.Errorf("%w: speed %v exceeds max speed %v", ErrInvalidState, start.Speed(), start.MaxSpeed)
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}

	return &Controller{
		state:   start,
		tuning:  tuning,
		mapping: mapping,
		lastAim: restingAim(start, tuning),
	}, nil
}

// restingAim is a point straight ahead of the body, so that a host which
// has not reported an aim yet does not turn the body.
func restingAim(state physics.MovementState, tuning physics.Tuning) physics.Vector2D {
	return state.Position.Add(physics.FromAngle(state.Facing-tuning.FacingOffset, 100))
}

// Step advances the simulation by one tick: resolve the held input,
// integrate velocity, steer toward aim, then move by the new velocity.
// A negative or non-finite dt is treated as 0. A non-finite aim is
// ignored in favour of the last valid one.
func (c *Controller) Step(held input.Held, aim physics.Vector2D, dt float64) physics.MovementState {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	if aim.IsFinite() {
		c.lastAim = aim
	}

	c.lastIntent = c.mapping.Resolve(held)
	physics.UpdateMovement(&c.state, c.lastIntent, c.lastAim, dt, c.tuning)
	c.tick++

	return c.state
}

// Position returns the current position
func (c *Controller) Position() physics.Vector2D { return c.state.Position }

// Velocity returns the current velocity
func (c *Controller) Velocity() physics.Vector2D { return c.state.Velocity }

// Facing returns the current facing angle in radians
func (c *Controller) Facing() float64 { return c.state.Facing }

// State returns a copy of the full movement state
func (c *Controller) State() physics.MovementState { return c.state }

// Tick returns the number of steps taken
func (c *Controller) Tick() uint64 { return c.tick }

// Intent returns the raw intent resolved on the last step
func (c *Controller) Intent() physics.Vector2D { return c.lastIntent }

// Tuning returns the tuning in use
func (c *Controller) Tuning() physics.Tuning { return c.tuning }

// Mapping returns the direction mapping in use
func (c *Controller) Mapping() input.DirectionMapping { return c.mapping }
