package render

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

// TestNewTerminalRenderer tests the creation of a new terminal renderer
func TestNewTerminalRenderer_CreatesValidRenderer_WithCorrectDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		scale  float64
	}{
		{"small renderer", 10, 5, 1.0},
		{"medium renderer", 80, 24, 10.0},
		{"large renderer", 120, 40, 5.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(nil, tt.width, tt.height, tt.scale)

			if renderer.width != tt.width || renderer.height != tt.height {
				t.Errorf("expected %dx%d, got %dx%d", tt.width, tt.height, renderer.width, renderer.height)
			}

			if renderer.scale != tt.scale {
				t.Errorf("expected scale %f, got %f", tt.scale, renderer.scale)
			}

			if len(renderer.buffer) != tt.height {
				t.Errorf("expected buffer height %d, got %d", tt.height, len(renderer.buffer))
			}

			for i, row := range renderer.buffer {
				if len(row) != tt.width {
					t.Errorf("row %d: expected width %d, got %d", i, tt.width, len(row))
				}
				for _, c := range row {
					if c != ' ' {
						t.Fatalf("row %d: new buffer should be blank", i)
					}
				}
			}
		})
	}
}

func TestWorldToScreen_ConvertsCoordinates_Correctly(t *testing.T) {
	renderer := NewTerminalRenderer(nil, 80, 24, 10.0) // 80x24 screen, scale 10

	tests := []struct {
		name      string
		centerPos physics.Vector2D
		worldPos  physics.Vector2D
		expectedX int
		expectedY int
	}{
		{
			name:      "center at origin, world at origin",
			centerPos: physics.Vector2D{X: 0, Y: 0},
			worldPos:  physics.Vector2D{X: 0, Y: 0},
			expectedX: 40, // width/2
			expectedY: 12, // height/2
		},
		{
			name:      "center at origin, world offset",
			centerPos: physics.Vector2D{X: 0, Y: 0},
			worldPos:  physics.Vector2D{X: 100, Y: 50},
			expectedX: 50, // 40 + 100/10
			expectedY: 17, // 12 + 50/10
		},
		{
			name:      "center offset, world at origin",
			centerPos: physics.Vector2D{X: 50, Y: 25},
			worldPos:  physics.Vector2D{X: 0, Y: 0},
			expectedX: 35, // 40 + (0-50)/10
			expectedY: 9,  // floor(12 - 2.5)
		},
		{
			name:      "left of the screen stays off screen",
			centerPos: physics.Vector2D{X: 0, Y: 0},
			worldPos:  physics.Vector2D{X: -405, Y: 0},
			expectedX: -1, // floor(40 - 40.5)
			expectedY: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer.SetCenter(tt.centerPos)
			x, y := renderer.worldToScreen(tt.worldPos)

			if x != tt.expectedX {
				t.Errorf("expected screen X %d, got %d", tt.expectedX, x)
			}

			if y != tt.expectedY {
				t.Errorf("expected screen Y %d, got %d", tt.expectedY, y)
			}
		})
	}
}

func TestGlyphForFacing(t *testing.T) {
	tests := []struct {
		facing   float64
		expected rune
	}{
		{0, '^'},
		{math.Pi / 4, '/'},
		{math.Pi / 2, '>'},
		{3 * math.Pi / 4, '\\'},
		{math.Pi, 'v'},
		{-math.Pi, 'v'},
		{-math.Pi / 2, '<'},
		{-math.Pi / 4, '\\'},
		{-3 * math.Pi / 4, '/'},
		{2*math.Pi + 0.1, '^'},
		{0.3, '^'},
		{0.5, '/'},
	}

	for _, tt := range tests {
		if got := GlyphForFacing(tt.facing); got != tt.expected {
			t.Errorf("GlyphForFacing(%v) = %q, expected %q", tt.facing, got, tt.expected)
		}
	}
}

// TestClear tests clearing the buffer
func TestClear_ClearsBuffer_WithSpaces(t *testing.T) {
	renderer := NewTerminalRenderer(nil, 10, 5, 1.0)

	for y := 0; y < renderer.height; y++ {
		for x := 0; x < renderer.width; x++ {
			renderer.buffer[y][x] = 'X'
		}
	}

	renderer.Clear()

	for y := 0; y < renderer.height; y++ {
		for x := 0; x < renderer.width; x++ {
			if renderer.buffer[y][x] != ' ' {
				t.Errorf("expected space at (%d, %d), got %q", x, y, renderer.buffer[y][x])
			}
		}
	}
}

func TestRenderEntity_RendersArrow_AtCorrectPosition(t *testing.T) {
	renderer := NewTerminalRenderer(nil, 20, 10, 1.0)

	renderer.RenderEntity(stubBody{pos: physics.Vector2D{X: 3, Y: -2}, facing: math.Pi / 2})

	if got := renderer.buffer[3][13]; got != '>' {
		t.Errorf("expected '>' at (13, 3), got %q", got)
	}
}

func TestRenderEntity_OutOfBoundsIsSkipped(t *testing.T) {
	renderer := NewTerminalRenderer(nil, 20, 10, 1.0)

	renderer.RenderEntity(stubBody{pos: physics.Vector2D{X: 1000, Y: 0}})
	renderer.RenderAim(physics.Vector2D{X: math.NaN(), Y: 0})

	if strings.ContainsAny(renderer.Frame(), "^+") {
		t.Errorf("out of bounds marks were drawn:\n%s", renderer.Frame())
	}
}

func TestRenderEntity_FollowRecenters(t *testing.T) {
	renderer := NewTerminalRenderer(nil, 20, 10, 1.0)
	renderer.Follow = true

	renderer.RenderEntity(stubBody{pos: physics.Vector2D{X: 500, Y: 500}})

	if got := renderer.buffer[5][10]; got != '^' {
		t.Errorf("followed entity should be at the centre, got %q", got)
	}
}

func TestDrawFrame_EntityDrawnOverAim(t *testing.T) {
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, 20, 10, 1.0)

	DrawFrame(renderer, stubBody{facing: math.Pi}, physics.Vector2D{})

	if got := renderer.buffer[5][10]; got != 'v' {
		t.Errorf("expected entity glyph on top of aim, got %q", got)
	}
}

func TestPresent_WritesBorderedFrame(t *testing.T) {
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, 4, 2, 1.0)

	renderer.RenderAim(physics.Vector2D{X: -2, Y: -1})
	renderer.Present()

	want := "+----+\n|+   |\n|    |\n+----+\n"
	if out.String() != want {
		t.Errorf("Present() wrote\n%q\nwant\n%q", out.String(), want)
	}

	out.Reset()
	renderer.ClearScreen = true
	renderer.Present()
	if !strings.HasPrefix(out.String(), "\033[H\033[2J") {
		t.Error("expected ANSI clear prefix")
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPresent_KeepsWriteError(t *testing.T) {
	renderer := NewTerminalRenderer(brokenWriter{}, 4, 2, 1.0)
	renderer.Present()

	if renderer.Err() == nil {
		t.Error("expected write error to be kept")
	}

	// no writer is fine
	NewTerminalRenderer(nil, 4, 2, 1.0).Present()
}
