// pkg/render/engo/hud.go
package engo

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

// HUDFontURL is the name the embedded HUD font is registered under
const HUDFontURL = "hud/goregular.ttf"

// Readout is what the HUD needs to know about the simulation
type Readout interface {
	State() physics.MovementState
	Tick() uint64
}

// HUDSystem draws a one-line text readout in the top-left corner
type HUDSystem struct {
	source Readout
	font   *common.Font
	label  *sprite
	text   string

	hudColor color.Color
}

// NewHUDSystem creates a HUD reading from source
func NewHUDSystem(source Readout) *HUDSystem {
	return &HUDSystem{
		source:   source,
		hudColor: color.RGBA{255, 255, 255, 255},
	}
}

// PreloadFont registers the embedded font with engo's file loader
func PreloadFont() error {
	return engo.Files.LoadReaderData(HUDFontURL, bytes.NewReader(goregular.TTF))
}

// Initialize creates the text entity. PreloadFont must have run.
func (hud *HUDSystem) Initialize(rs *common.RenderSystem) error {
	font := &common.Font{
		URL:  HUDFontURL,
		FG:   hud.hudColor,
		Size: 14,
	}
	if err := font.CreatePreloaded(); err != nil {
		return fmt.Errorf("failed to create HUD font: %w", err)
	}
	hud.font = font

	hud.label = newSprite(common.Text{Font: font}, 0, hud.hudColor)
	hud.label.Position = engo.Point{X: 10, Y: 10}
	hud.label.StartZIndex = 10
	rs.Add(&hud.label.BasicEntity, &hud.label.RenderComponent, &hud.label.SpaceComponent)
	return nil
}

// Add satisfies the ecs.System interface
func (hud *HUDSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	// Not used for HUD system
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {
	// Not used for HUD system
}

// Priority runs the HUD after the sprites are placed.
func (*HUDSystem) Priority() int { return PriorityHUD }

// Update refreshes the readout text
func (hud *HUDSystem) Update(dt float32) {
	text := FormatReadout(hud.source.State(), hud.source.Tick())
	if text == hud.text {
		return
	}
	hud.text = text

	if hud.label != nil {
		hud.label.Drawable = common.Text{Font: hud.font, Text: text}
	}
}

// Text returns the last readout drawn
func (hud *HUDSystem) Text() string {
	return hud.text
}

// FormatReadout renders speed, facing in degrees and the tick count
func FormatReadout(state physics.MovementState, tick uint64) string {
	facing := physics.NormalizeAngle(state.Facing) * 180 / math.Pi
	return fmt.Sprintf("speed %.2f/%.2f  facing %+.1f°  pos (%.1f, %.1f)  tick %d",
		state.Speed(), state.MaxSpeed, facing, state.Position.X, state.Position.Y, tick)
}
