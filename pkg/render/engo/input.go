// pkg/render/engo/input.go
package engo

import (
	"strings"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-topdown/pkg/event"
	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Button names for movement symbols are prefixed so they never collide
// with the camera buttons.
const buttonPrefix = "move:"

var namedKeys = map[string]engo.Key{
	"UP":     engo.KeyArrowUp,
	"DOWN":   engo.KeyArrowDown,
	"LEFT":   engo.KeyArrowLeft,
	"RIGHT":  engo.KeyArrowRight,
	"SPACE":  engo.KeySpace,
	"SHIFT":  engo.KeyLeftShift,
	"ENTER":  engo.KeyEnter,
	"ESCAPE": engo.KeyEscape,
	"TAB":    engo.KeyTab,
}

var letterKeys = [26]engo.Key{
	engo.KeyA, engo.KeyB, engo.KeyC, engo.KeyD, engo.KeyE, engo.KeyF, engo.KeyG,
	engo.KeyH, engo.KeyI, engo.KeyJ, engo.KeyK, engo.KeyL, engo.KeyM, engo.KeyN,
	engo.KeyO, engo.KeyP, engo.KeyQ, engo.KeyR, engo.KeyS, engo.KeyT, engo.KeyU,
	engo.KeyV, engo.KeyW, engo.KeyX, engo.KeyY, engo.KeyZ,
}

var digitKeys = [10]engo.Key{
	engo.KeyZero, engo.KeyOne, engo.KeyTwo, engo.KeyThree, engo.KeyFour,
	engo.KeyFive, engo.KeySix, engo.KeySeven, engo.KeyEight, engo.KeyNine,
}

// KeyForSymbol maps an input symbol to an engo key. Single letters and
// digits map directly; a few names ("Up", "Space", ...) are recognized
// case-insensitively.
func KeyForSymbol(sym input.Symbol) (engo.Key, bool) {
	s := strings.ToUpper(string(sym))
	if len(s) == 1 {
		switch c := s[0]; {
		case c >= 'A' && c <= 'Z':
			return letterKeys[c-'A'], true
		case c >= '0' && c <= '9':
			return digitKeys[c-'0'], true
		}
	}
	key, ok := namedKeys[s]
	return key, ok
}

// ButtonName returns the engo button name registered for sym
func ButtonName(sym input.Symbol) string {
	return buttonPrefix + string(sym)
}

// ButtonReader reports button edges for the current frame
type ButtonReader interface {
	JustPressed(name string) bool
	JustReleased(name string) bool
}

// PointerReader reports the pointer position in screen coordinates
type PointerReader interface {
	Pointer() physics.Vector2D
}

// engoInput reads the global engo input manager
type engoInput struct{}

func (engoInput) JustPressed(name string) bool  { return engo.Input.Button(name).JustPressed() }
func (engoInput) JustReleased(name string) bool { return engo.Input.Button(name).JustReleased() }

func (engoInput) Pointer() physics.Vector2D {
	return physics.Vector2D{X: float64(engo.Input.Mouse.X), Y: float64(engo.Input.Mouse.Y)}
}

// InputSystem turns engo key and mouse input into bus events. It never
// touches the simulation directly; the session applies the events.
type InputSystem struct {
	bus     *event.Bus
	symbols []input.Symbol
	camera  *CameraSystem

	buttons ButtonReader
	pointer PointerReader

	lastPointer physics.Vector2D
	pointerSeen bool
}

// NewInputSystem creates an input system publishing to bus for every
// symbol in mapping. camera converts the pointer to world space.
func NewInputSystem(bus *event.Bus, mapping input.DirectionMapping, camera *CameraSystem) *InputSystem {
	return &InputSystem{
		bus:     bus,
		symbols: mapping.Symbols(),
		camera:  camera,
		buttons: engoInput{},
		pointer: engoInput{},
	}
}

// Add satisfies the ecs.System interface
func (is *InputSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	// Not used for input system
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {
	// Not used for input system
}

// Priority runs input first so a frame's edges reach the same tick.
func (*InputSystem) Priority() int { return PriorityInput }

// Update publishes this frame's key edges and pointer movement
func (is *InputSystem) Update(dt float32) {
	is.pollButtons()
	is.pollPointer()
}

func (is *InputSystem) pollButtons() {
	for _, sym := range is.symbols {
		name := ButtonName(sym)
		if is.buttons.JustPressed(name) {
			is.bus.Publish(event.NewKeyEvent(event.KeyPressed, is, sym))
		}
		if is.buttons.JustReleased(name) {
			is.bus.Publish(event.NewKeyEvent(event.KeyReleased, is, sym))
		}
	}
}

// pollPointer publishes AimMoved only when the pointer actually moves, so
// the body keeps its resting aim until the mouse is used.
func (is *InputSystem) pollPointer() {
	screen := is.pointer.Pointer()
	if !screen.IsFinite() {
		return
	}
	if is.pointerSeen && screen == is.lastPointer {
		return
	}
	if !is.pointerSeen {
		// engo reports (0,0) before the first mouse event
		is.pointerSeen = true
		is.lastPointer = screen
		if screen.IsZero() {
			return
		}
	}
	is.lastPointer = screen

	target := screen
	if is.camera != nil {
		target = is.camera.ScreenToWorld(screen)
	}
	is.bus.Publish(event.NewAimEvent(is, target))
}

// SetupInputBindings registers one engo button per mapped symbol.
// Symbols without a known key are returned so the caller can report them.
func SetupInputBindings(mapping input.DirectionMapping) []input.Symbol {
	var unbound []input.Symbol
	for _, sym := range mapping.Symbols() {
		key, ok := KeyForSymbol(sym)
		if !ok {
			unbound = append(unbound, sym)
			continue
		}
		engo.Input.RegisterButton(ButtonName(sym), key)
	}
	return unbound
}
