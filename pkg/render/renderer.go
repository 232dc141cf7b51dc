// pkg/render/renderer.go
package render

import (
	"context"
	"sync/atomic"

	"github.com/opd-ai/go-topdown/pkg/logging"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Body is the read-only view of the simulated entity a renderer needs
type Body interface {
	Position() physics.Vector2D
	Velocity() physics.Vector2D
	Facing() float64
}

// Renderer draws one frame at a time: Clear, any number of Render
// calls, then Present.
type Renderer interface {
	Clear()
	RenderEntity(body Body)
	RenderAim(target physics.Vector2D)
	Present()
}

// DrawFrame renders a complete frame of body and aim. The body is drawn
// last so it stays visible when the aim point sits on top of it.
func DrawFrame(r Renderer, body Body, aim physics.Vector2D) {
	r.Clear()
	r.RenderAim(aim)
	r.RenderEntity(body)
	r.Present()
}

// NullRenderer draws nothing and logs each call at debug level
type NullRenderer struct {
	logger *logging.Logger
	frames atomic.Uint64
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer() *NullRenderer {
	return NewNullRendererWithLogger(logging.NewLogger())
}

// NewNullRendererWithLogger creates a NullRenderer logging to logger
func NewNullRendererWithLogger(logger *logging.Logger) *NullRenderer {
	return &NullRenderer{logger: logger}
}

func (d *NullRenderer) log() *logging.Logger {
	if d.logger == nil {
		return logging.Discard()
	}
	return d.logger
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.log().Debug(context.Background(), "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	n := d.frames.Add(1)
	d.log().Debug(context.Background(), "Present called", "frame", n)
}

// RenderEntity implements Renderer.
func (d *NullRenderer) RenderEntity(body Body) {
	ctx := context.Background()
	if body == nil {
		d.log().Debug(ctx, "RenderEntity called with nil body")
		return
	}
	pos := body.Position()
	d.log().Debug(ctx, "RenderEntity called",
		"x", pos.X,
		"y", pos.Y,
		"speed", body.Velocity().Length(),
		"facing", body.Facing(),
	)
}

// RenderAim implements Renderer.
func (d *NullRenderer) RenderAim(target physics.Vector2D) {
	d.log().Debug(context.Background(), "RenderAim called", "x", target.X, "y", target.Y)
}

// Frames returns the number of presented frames
func (d *NullRenderer) Frames() uint64 {
	return d.frames.Load()
}
