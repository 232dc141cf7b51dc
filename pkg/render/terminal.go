package render

import (
	"io"
	"math"
	"strings"
	"sync"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

// facingGlyphs are indexed by facing octant, starting at facing 0
// (forward is up the screen) and turning clockwise on screen.
var facingGlyphs = [8]rune{'^', '/', '>', '\\', 'v', '/', '<', '\\'}

// AimGlyph marks the aim point
const AimGlyph = '+'

// GlyphForFacing returns the arrow glyph for the octant nearest facing
func GlyphForFacing(facing float64) rune {
	k := int(math.Round(physics.NormalizeAngle(facing) / (math.Pi / 4)))
	return facingGlyphs[((k%8)+8)%8]
}

// TerminalRenderer provides a simple ASCII-based rendering for terminals
type TerminalRenderer struct {
	mu        sync.Mutex
	out       io.Writer
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D

	// ClearScreen emits an ANSI home+clear sequence before each frame
	ClearScreen bool
	// Follow recenters the view on the entity every frame
	Follow bool

	err error
}

// NewTerminalRenderer creates a renderer writing frames of the given
// size to out. scale is world units per character cell.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		out:    out,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.centerPos = pos
}

// worldToScreen converts world coordinates to character cells
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2))
	return screenX, screenY
}

func (r *TerminalRenderer) plot(pos physics.Vector2D, glyph rune) {
	if !pos.IsFinite() {
		return
	}
	x, y := r.worldToScreen(pos)
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = glyph
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderEntity implements Renderer
func (r *TerminalRenderer) RenderEntity(body Body) {
	if body == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Follow {
		r.centerPos = body.Position()
	}
	r.plot(body.Position(), GlyphForFacing(body.Facing()))
}

// RenderAim implements Renderer
func (r *TerminalRenderer) RenderAim(target physics.Vector2D) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plot(target, AimGlyph)
}

// Frame returns the current buffer with a border, one line per row
func (r *TerminalRenderer) Frame() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.frame()
}

func (r *TerminalRenderer) frame() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\n"

	sb.WriteString(border)
	for y := range r.buffer {
		sb.WriteByte('|')
		sb.WriteString(string(r.buffer[y]))
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

// Present implements Renderer. Write errors are kept and reported by Err.
func (r *TerminalRenderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.out == nil {
		return
	}
	frame := r.frame()
	if r.ClearScreen {
		frame = "\033[H\033[2J" + frame
	}
	if _, err := io.WriteString(r.out, frame); err != nil && r.err == nil {
		r.err = err
	}
}

// Err returns the first write error from Present
func (r *TerminalRenderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}
