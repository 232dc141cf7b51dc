// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-topdown/pkg/physics"
	"github.com/opd-ai/go-topdown/pkg/render"
)

// FrameSource is the source of one frame: the body plus the aim point.
type FrameSource interface {
	render.Body
	Aim() physics.Vector2D
}

// sprite is an entity with the components the render system draws
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

func newSprite(drawable common.Drawable, size float32, tint color.Color) *sprite {
	return &sprite{
		BasicEntity: ecs.NewBasic(),
		RenderComponent: common.RenderComponent{
			Drawable: drawable,
			Color:    tint,
		},
		SpaceComponent: common.SpaceComponent{
			Width:  size,
			Height: size,
		},
	}
}

// resize sets the sprite's on-screen edge length. engo draws the texture
// at its native size times Scale, so Scale tracks the edge as well.
func (s *sprite) resize(edge float32, textureSize int) {
	s.Width = edge
	s.Height = edge
	k := edge / float32(textureSize)
	s.Scale = engo.Point{X: k, Y: k}
}

// EngoRenderer implements render.Renderer on top of engo's render system.
// It owns one sprite for the body and one for the aim marker and moves
// them through the camera every frame.
type EngoRenderer struct {
	source   FrameSource
	camera   *CameraSystem
	bodySize float32

	body    *sprite
	reticle *sprite

	frames uint64
}

// NewEngoRenderer creates a renderer drawing source through camera.
// bodySize is the body's edge length in world units.
func NewEngoRenderer(source FrameSource, camera *CameraSystem, bodySize float32) *EngoRenderer {
	r := &EngoRenderer{
		source:   source,
		camera:   camera,
		bodySize: bodySize,
		body:     newSprite(nil, bodySize, color.White),
		reticle:  newSprite(nil, ReticleSpriteSize, color.White),
	}
	r.body.resize(bodySize, BodySpriteSize)
	return r
}

// Initialize attaches the sprites to the render system using the loaded
// assets.
func (r *EngoRenderer) Initialize(rs *common.RenderSystem, assets *AssetManager) {
	r.body.Drawable = assets.BodySprite()
	r.reticle.Drawable = assets.ReticleSprite()

	// Aim marker below the body
	r.reticle.StartZIndex = 1
	r.body.StartZIndex = 2

	rs.Add(&r.reticle.BasicEntity, &r.reticle.RenderComponent, &r.reticle.SpaceComponent)
	rs.Add(&r.body.BasicEntity, &r.body.RenderComponent, &r.body.SpaceComponent)
}

// Add satisfies the ecs.System interface
func (r *EngoRenderer) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	// Not used for the renderer
}

// Remove satisfies the ecs.System interface
func (r *EngoRenderer) Remove(basic ecs.BasicEntity) {
	// Not used for the renderer
}

// Priority places sprites after the camera has moved.
func (*EngoRenderer) Priority() int { return PriorityDraw }

// Update draws the current frame
func (r *EngoRenderer) Update(dt float32) {
	render.DrawFrame(r, r.source, r.source.Aim())
}

// Clear implements render.Renderer. engo clears the screen itself.
func (r *EngoRenderer) Clear() {}

// RenderEntity implements render.Renderer
func (r *EngoRenderer) RenderEntity(body render.Body) {
	if body == nil {
		r.body.Hidden = true
		return
	}
	pos := body.Position()
	if !pos.IsFinite() {
		r.body.Hidden = true
		return
	}

	r.body.Hidden = false
	r.body.resize(r.bodySize*r.camera.GetZoom(), BodySpriteSize)
	r.body.Rotation = RotationDegrees(body.Facing())
	r.body.SetCenter(toPoint(r.camera.WorldToScreen(pos)))
}

// RenderAim implements render.Renderer
func (r *EngoRenderer) RenderAim(target physics.Vector2D) {
	if !target.IsFinite() {
		r.reticle.Hidden = true
		return
	}
	r.reticle.Hidden = false
	r.reticle.SetCenter(toPoint(r.camera.WorldToScreen(target)))
}

// Present implements render.Renderer. engo presents after all systems ran.
func (r *EngoRenderer) Present() {
	r.frames++
}

// Frames returns how many frames have been presented
func (r *EngoRenderer) Frames() uint64 {
	return r.frames
}

// RotationDegrees converts a facing in radians to engo's clockwise
// degrees in [0, 360).
func RotationDegrees(facing float64) float32 {
	deg := math.Mod(facing*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return float32(deg)
}

func toPoint(v physics.Vector2D) engo.Point {
	return engo.Point{X: float32(v.X), Y: float32(v.Y)}
}
