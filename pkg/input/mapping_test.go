package input

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

func mustDefaultMapping(t *testing.T) DirectionMapping {
	t.Helper()
	m, err := NewDirectionMapping(DefaultBindings())
	if err != nil {
		t.Fatalf("NewDirectionMapping() failed: %v", err)
	}
	return m
}

func TestResolve(t *testing.T) {
	m := mustDefaultMapping(t)

	tests := []struct {
		name     string
		held     Held
		expected physics.Vector2D
	}{
		{"nothing_held", NewHeld(), physics.Vector2D{}},
		{"forward", NewHeld("W"), physics.Vector2D{X: 0, Y: -1}},
		{"forward_right", NewHeld("W", "D"), physics.Vector2D{X: 1, Y: -1}},
		{"opposite_keys_cancel", NewHeld("W", "S"), physics.Vector2D{}},
		{"all_four", NewHeld("W", "A", "S", "D"), physics.Vector2D{}},
		{"unmapped_ignored", NewHeld("Space", "Q"), physics.Vector2D{}},
		{"mapped_and_unmapped", NewHeld("A", "Shift"), physics.Vector2D{X: -1, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Resolve(tt.held)
			if got != tt.expected {
				t.Errorf("Resolve(%v) = %v, expected %v", tt.held, got, tt.expected)
			}
		})
	}
}

func TestResolve_OppositeKeysAreExactlyZero(t *testing.T) {
	m := mustDefaultMapping(t)
	if !m.Resolve(NewHeld("A", "D")).IsZero() {
		t.Error("A+D should resolve to an exact zero intent")
	}
}

func TestResolve_DiagonalIsNotUnit(t *testing.T) {
	m := mustDefaultMapping(t)
	if got := m.Resolve(NewHeld("W", "D")).Length(); math.Abs(got-math.Sqrt2) > 1e-9 {
		t.Errorf("diagonal intent length = %v, expected sqrt(2)", got)
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	bindings := map[Symbol]physics.Vector2D{
		"a": {X: 0.1, Y: 0.7},
		"b": {X: -0.3, Y: 0.2},
		"c": {X: 0.25, Y: -0.5},
		"d": {X: 1e-3, Y: 3},
		"e": {X: -2, Y: 0.125},
	}
	m, err := NewDirectionMapping(bindings)
	if err != nil {
		t.Fatalf("NewDirectionMapping() failed: %v", err)
	}

	symbols := []Symbol{"a", "b", "c", "d", "e", "x"}
	var expected physics.Vector2D
	for _, s := range symbols {
		expected = expected.Add(bindings[s])
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		shuffled := append([]Symbol(nil), symbols...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := m.Resolve(NewHeld(shuffled...))
		if math.Abs(got.X-expected.X) > 1e-12 || math.Abs(got.Y-expected.Y) > 1e-12 {
			t.Fatalf("Resolve(%v) = %v, expected %v", shuffled, got, expected)
		}
	}
}

func TestNewDirectionMapping_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		bindings map[Symbol]physics.Vector2D
		wantErr  error
	}{
		{"nan_x", map[Symbol]physics.Vector2D{"W": {X: math.NaN(), Y: 0}}, ErrNonFiniteDirection},
		{"inf_y", map[Symbol]physics.Vector2D{"S": {X: 0, Y: math.Inf(1)}}, ErrNonFiniteDirection},
		{"empty_symbol", map[Symbol]physics.Vector2D{"": {X: 1, Y: 0}}, ErrEmptySymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirectionMapping(tt.bindings)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewDirectionMapping() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectionMapping_IsImmutable(t *testing.T) {
	bindings := DefaultBindings()
	m, err := NewDirectionMapping(bindings)
	if err != nil {
		t.Fatalf("NewDirectionMapping() failed: %v", err)
	}

	bindings["W"] = physics.Vector2D{X: 9, Y: 9}
	copied := m.Bindings()
	copied["S"] = physics.Vector2D{X: 9, Y: 9}
	symbols := m.Symbols()
	symbols[0] = "Z"

	if dir, _ := m.Lookup("W"); dir != (physics.Vector2D{X: 0, Y: -1}) {
		t.Errorf("mapping changed through source map: W -> %v", dir)
	}
	if dir, _ := m.Lookup("S"); dir != (physics.Vector2D{X: 0, Y: 1}) {
		t.Errorf("mapping changed through Bindings copy: S -> %v", dir)
	}
	if got := m.Symbols(); got[0] != "A" {
		t.Errorf("Symbols() changed through returned slice: %v", got)
	}
}

func TestDirectionMapping_Symbols(t *testing.T) {
	m := mustDefaultMapping(t)
	got := m.Symbols()
	want := []Symbol{"A", "D", "S", "W"}

	if len(got) != len(want) || m.Len() != len(want) {
		t.Fatalf("Symbols() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Symbols()[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestDirectionMapping_ZeroValue(t *testing.T) {
	var m DirectionMapping
	if got := m.Resolve(NewHeld("W")); !got.IsZero() {
		t.Errorf("zero mapping resolved %v", got)
	}
}
