// cmd/topdown/script.go
package main

import (
	"context"

	"github.com/opd-ai/go-topdown/pkg/engine"
	"github.com/opd-ai/go-topdown/pkg/event"
	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Step holds keys and aim for a number of ticks. Press and Release are
// applied when the step begins. AimOffset, if set, places the aim point
// relative to the body's position at that moment.
type Step struct {
	Ticks     int
	Press     []input.Symbol
	Release   []input.Symbol
	AimOffset *physics.Vector2D
}

func offset(x, y float64) *physics.Vector2D {
	return &physics.Vector2D{X: x, Y: y}
}

// DefaultScript drives forward, turns, strafes, coasts to a stop, then
// backs up diagonally.
func DefaultScript() []Step {
	return []Step{
		{Ticks: 60, Press: []input.Symbol{"W"}},
		{Ticks: 45, AimOffset: offset(200, 0)},
		{Ticks: 30, Press: []input.Symbol{"D"}},
		{Ticks: 60, Release: []input.Symbol{"W", "D"}},
		{Ticks: 30, Press: []input.Symbol{"S", "A"}},
		{Ticks: 60, Release: []input.Symbol{"S", "A"}, AimOffset: offset(0, -200)},
	}
}

// ScriptLength returns the number of ticks in one pass of script
func ScriptLength(script []Step) int {
	n := 0
	for _, step := range script {
		n += step.Ticks
	}
	return n
}

// Replay publishes the script's input on bus and advances session by dt
// until total ticks have run, repeating the script as needed. afterTick,
// if non-nil, runs after every tick. It returns the number of ticks run,
// which is less than total only if ctx was cancelled.
func Replay(ctx context.Context, session *engine.Session, bus *event.Bus, script []Step, total int, dt float64, afterTick func()) int {
	if ScriptLength(script) == 0 {
		return 0
	}

	ran := 0
	for ran < total {
		for _, step := range script {
			if ran >= total {
				break
			}
			for _, sym := range step.Release {
				bus.Publish(event.NewKeyEvent(event.KeyReleased, "script", sym))
			}
			for _, sym := range step.Press {
				bus.Publish(event.NewKeyEvent(event.KeyPressed, "script", sym))
			}
			if step.AimOffset != nil {
				bus.Publish(event.NewAimEvent("script", session.Position().Add(*step.AimOffset)))
			}

			for i := 0; i < step.Ticks && ran < total; i++ {
				if ctx.Err() != nil {
					return ran
				}
				session.Advance(dt)
				ran++
				if afterTick != nil {
					afterTick()
				}
			}
		}
	}
	return ran
}
