package physics

import (
	"fmt"
	"math"
	"strings"
)

// SteeringMode selects how the facing angle chooses its turn direction
type SteeringMode int

const (
	// SteerShortest turns along the shorter arc and lands exactly on the
	// desired angle once it is within one step.
	SteerShortest SteeringMode = iota
	// SteerLegacy picks the turn direction by plain numeric comparison of
	// the two angles. It takes the long way round when they straddle the
	// +/-Pi seam and oscillates around the target by up to one step.
	SteerLegacy
)

// String returns the config name of the mode
func (m SteeringMode) String() string {
	switch m {
	case SteerShortest:
		return "shortest"
	case SteerLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("SteeringMode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode
func (m SteeringMode) Valid() bool {
	return m == SteerShortest || m == SteerLegacy
}

// ParseSteeringMode maps a config name to a mode
func ParseSteeringMode(s string) (SteeringMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shortest":
		return SteerShortest, nil
	case "legacy":
		return SteerLegacy, nil
	default:
		return 0, fmt.Errorf("%w: unknown steering mode %q", ErrInvalidTuning, s)
	}
}

// DesiredAngle returns the facing that points from position at aim,
// shifted by offset for sprites whose forward is not along +X.
func DesiredAngle(position, aim Vector2D, offset float64) float64 {
	return AngleBetween(position, aim) + offset
}

// Steer moves facing toward desired by at most turnRate*dt
func Steer(facing, desired, turnRate, dt float64, mode SteeringMode) float64 {
	if desired == facing {
		return facing
	}
	step := turnRate * dt

	if mode == SteerLegacy {
		if desired < facing {
			return facing - step
		}
		return facing + step
	}

	diff := ShortestAngleDiff(facing, desired)
	if math.Abs(diff) <= step {
		return NormalizeAngle(desired)
	}
	return NormalizeAngle(facing + math.Copysign(step, diff))
}
