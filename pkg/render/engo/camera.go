// pkg/render/engo/camera.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-topdown/pkg/physics"
	"github.com/opd-ai/go-topdown/pkg/render"
)

// Camera control button names
const (
	ButtonResetZoom = "resetZoom"
	ButtonZoomIn    = "zoomIn"
	ButtonZoomOut   = "zoomOut"
)

// CameraSystem follows the body and converts between world and screen
// coordinates. It does not move the engo camera; every drawn component
// is placed through WorldToScreen instead.
type CameraSystem struct {
	// Body to follow, sampled every update
	body render.Body

	// Target to follow
	target    physics.Vector2D
	targetSet bool

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32

	// Smooth following
	followSpeed float32
	smoothing   bool

	// Current camera state
	currentPos physics.Vector2D
	viewport   physics.Vector2D
}

// NewCameraSystem creates a camera for a viewport of the given size,
// initially looking at the viewport center.
func NewCameraSystem(width, height float32) *CameraSystem {
	viewport := physics.Vector2D{X: float64(width), Y: float64(height)}
	return &CameraSystem{
		zoom:        1.0,
		minZoom:     0.1,
		maxZoom:     3.0,
		followSpeed: 2.0,
		smoothing:   true,
		currentPos:  viewport.Scale(0.5),
		viewport:    viewport,
	}
}

// Add satisfies the ecs.System interface
func (cs *CameraSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	// Not used for camera system
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {
	// Not used for camera system
}

// Priority runs the camera after the simulation and before drawing.
func (*CameraSystem) Priority() int { return PriorityCamera }

// Update reads zoom input and moves toward the followed body
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()
	cs.Follow(dt)
}

// Follow moves the camera toward the tracked body, if any
func (cs *CameraSystem) Follow(dt float32) {
	if cs.body != nil {
		cs.target = cs.body.Position()
		cs.targetSet = true
	}
	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}
}

// handleZoomInput processes zoom-related input
func (cs *CameraSystem) handleZoomInput() {
	if engo.Input == nil {
		return
	}

	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}
	if engo.Input.Button(ButtonZoomIn).Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button(ButtonZoomOut).Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button(ButtonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// updateCameraPosition eases toward the target. The step never
// overshoots, even for long frames.
func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}

	factor := float64(cs.followSpeed) * float64(dt)
	if factor >= 1 {
		cs.currentPos = cs.target
		return
	}
	if factor <= 0 {
		return
	}
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Scale(factor))
}

// Track makes the camera follow body. The camera jumps to the body's
// current position so the first frame is centered.
func (cs *CameraSystem) Track(body render.Body) {
	cs.body = body
	if body != nil {
		cs.target = body.Position()
		cs.targetSet = true
		cs.currentPos = cs.target
	}
}

// SetTarget sets a fixed point for the camera to move to
func (cs *CameraSystem) SetTarget(target physics.Vector2D) {
	cs.body = nil
	cs.target = target
	cs.targetSet = true

	if !cs.smoothing {
		cs.currentPos = target
	}
}

// ClearTarget stops following
func (cs *CameraSystem) ClearTarget() {
	cs.body = nil
	cs.targetSet = false
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

// clampZoom ensures zoom is within valid bounds
func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom || math.IsNaN(float64(zoom)) {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetFollowSpeed sets the camera follow speed
func (cs *CameraSystem) SetFollowSpeed(speed float32) {
	cs.followSpeed = speed
}

// GetFollowSpeed returns the current follow speed
func (cs *CameraSystem) GetFollowSpeed() float32 {
	return cs.followSpeed
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// IsSmoothing returns whether camera smoothing is enabled
func (cs *CameraSystem) IsSmoothing() bool {
	return cs.smoothing
}

// GetCurrentPosition returns the world point at the viewport center
func (cs *CameraSystem) GetCurrentPosition() physics.Vector2D {
	return cs.currentPos
}

// WorldToScreen converts world coordinates to screen coordinates
func (cs *CameraSystem) WorldToScreen(worldPos physics.Vector2D) physics.Vector2D {
	return worldPos.Sub(cs.currentPos).
		Scale(float64(cs.zoom)).
		Add(cs.viewport.Scale(0.5))
}

// ScreenToWorld converts screen coordinates to world coordinates
func (cs *CameraSystem) ScreenToWorld(screenPos physics.Vector2D) physics.Vector2D {
	return screenPos.Sub(cs.viewport.Scale(0.5)).
		Scale(1 / float64(cs.zoom)).
		Add(cs.currentPos)
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// GetZoomLimits returns the current zoom limits
func (cs *CameraSystem) GetZoomLimits() (float32, float32) {
	return cs.minZoom, cs.maxZoom
}

// SetupCameraControls registers the camera buttons with engo
func SetupCameraControls() {
	engo.Input.RegisterButton(ButtonZoomIn, engo.KeyEquals)
	engo.Input.RegisterButton(ButtonZoomOut, engo.KeyDash)
	engo.Input.RegisterButton(ButtonResetZoom, engo.KeyR)
}
