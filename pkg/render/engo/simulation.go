// pkg/render/engo/simulation.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

// System priorities. engo updates higher priorities first and the
// render system runs last.
const (
	PriorityInput      = 40
	PrioritySimulation = 30
	PriorityCamera     = 20
	PriorityDraw       = 10
	PriorityHUD        = 5
)

// Stepper advances the simulation by dt seconds
type Stepper interface {
	Advance(dt float64) physics.MovementState
}

// SimulationSystem advances the simulation once per engo frame
type SimulationSystem struct {
	stepper Stepper
}

// NewSimulationSystem creates a system stepping s every frame
func NewSimulationSystem(s Stepper) *SimulationSystem {
	return &SimulationSystem{stepper: s}
}

// Add satisfies the ecs.System interface
func (ss *SimulationSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	// Not used for simulation system
}

// Remove satisfies the ecs.System interface
func (ss *SimulationSystem) Remove(basic ecs.BasicEntity) {
	// Not used for simulation system
}

// Priority runs the step after input and before the camera.
func (*SimulationSystem) Priority() int { return PrioritySimulation }

// Update advances by the frame time
func (ss *SimulationSystem) Update(dt float32) {
	ss.stepper.Advance(float64(dt))
}
