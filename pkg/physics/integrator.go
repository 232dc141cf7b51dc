package physics

import (
	"errors"
	"fmt"
	"math"
)

// Default tuning values for a controllable entity
const (
	DefaultMaxSpeed     = 5.0
	DefaultAcceleration = 5.0         // units per second squared
	DefaultDeceleration = 4.0         // units per second squared
	DefaultTurnRate     = 5.0         // radians per second
	DefaultFacingOffset = math.Pi / 2 // sprite "forward" points up the screen
)

// ErrInvalidTuning is returned when a tuning value is negative or not finite
var ErrInvalidTuning = errors.New("invalid movement tuning")

// Tuning holds the fixed rates that shape movement and steering
type Tuning struct {
	Acceleration float64
	Deceleration float64
	TurnRate     float64
	FacingOffset float64
	Steering     SteeringMode
}

// DefaultTuning returns the stock tuning values
func DefaultTuning() Tuning {
	return Tuning{
		Acceleration: DefaultAcceleration,
		Deceleration: DefaultDeceleration,
		TurnRate:     DefaultTurnRate,
		FacingOffset: DefaultFacingOffset,
		Steering:     SteerShortest,
	}
}

// Validate checks that acceleration and deceleration are finite and
// positive and the turn rate is finite and non-negative. A body with no
// deceleration would never come to rest.
func (t Tuning) Validate() error {
	rates := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"acceleration", t.Acceleration, true},
		{"deceleration", t.Deceleration, true},
		{"turn rate", t.TurnRate, false},
	}
	for _, r := range rates {
		if !isFinite(r.value) || r.value < 0 {
			return fmt.Errorf("%w: %s must be finite and >= 0, got %v", ErrInvalidTuning, r.name, r.value)
		}
		if r.positive && r.value == 0 {
			return fmt.Errorf("%w: %s must be > 0", ErrInvalidTuning, r.name)
		}
	}
	if !isFinite(t.FacingOffset) {
		return fmt.Errorf("%w: facing offset must be finite, got %v", ErrInvalidTuning, t.FacingOffset)
	}
	if !t.Steering.Valid() {
		return fmt.Errorf("%w: unknown steering mode %d", ErrInvalidTuning, t.Steering)
	}
	return nil
}

// IntegrateVelocity turns a raw intent vector into the next velocity.
//
// The intent is normalized, scaled to maxSpeed and rotated into the
// entity's facing so controls are relative to where the entity points.
// With a non-zero target the velocity accelerates toward it; with no
// target it brakes against its own direction of travel. The result never
// exceeds maxSpeed.
func IntegrateVelocity(intent, velocity Vector2D, facing, maxSpeed, dt float64, tuning Tuning) Vector2D {
	if !intent.IsZero() {
		intent = intent.Normalize()
	}
	target := intent.Scale(maxSpeed).Rotate(facing)

	var next Vector2D
	if target.IsZero() {
		next = brake(velocity, tuning.Deceleration*dt)
	} else {
		next = velocity.Add(target.Normalize().Scale(tuning.Acceleration * dt))
	}

	return clampSpeed(next, maxSpeed)
}

// brake slows velocity by step along its reverse direction. A step that
// would carry the velocity through zero lands on exactly zero.
func brake(velocity Vector2D, step float64) Vector2D {
	if velocity.IsZero() {
		return Vector2D{}
	}
	if step >= velocity.Length() {
		return Vector2D{}
	}
	reverse := velocity.Rotate(math.Pi).Normalize()
	return velocity.Add(reverse.Scale(step))
}

// clampSpeed rescales v to maxSpeed when it is faster, keeping direction
func clampSpeed(v Vector2D, maxSpeed float64) Vector2D {
	if v.Length() > maxSpeed {
		return v.Normalize().Scale(maxSpeed)
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
