// Package input turns held input symbols into a raw movement intent.
package input

import (
	"errors"
	"fmt"
	"sort"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Symbol names an abstract input, typically a key such as "W"
type Symbol string

var (
	// ErrEmptySymbol is returned when a binding has no symbol name
	ErrEmptySymbol = errors.New("empty input symbol")
	// ErrNonFiniteDirection is returned when a binding direction is NaN or infinite
	ErrNonFiniteDirection = errors.New("non-finite direction vector")
)

// DirectionMapping is an immutable lookup from symbol to direction.
// Build one with NewDirectionMapping; the zero value maps nothing.
type DirectionMapping struct {
	directions map[Symbol]physics.Vector2D
	symbols    []Symbol
}

// DefaultBindings returns the WASD layout: W forward (0,-1), S back,
// A left, D right.
func DefaultBindings() map[Symbol]physics.Vector2D {
	return map[Symbol]physics.Vector2D{
		"W": {X: 0, Y: -1},
		"S": {X: 0, Y: 1},
		"A": {X: -1, Y: 0},
		"D": {X: 1, Y: 0},
	}
}

// NewDirectionMapping copies bindings into an immutable mapping
func NewDirectionMapping(bindings map[Symbol]physics.Vector2D) (DirectionMapping, error) {
	directions := make(map[Symbol]physics.Vector2D, len(bindings))
	symbols := make([]Symbol, 0, len(bindings))

	for sym, dir := range bindings {
		if sym == "" {
			return DirectionMapping{}, ErrEmptySymbol
		}
		if !dir.IsFinite() {
			return DirectionMapping{}, fmt.Errorf("%w: %q -> (%v, %v)", ErrNonFiniteDirection, sym, dir.X, dir.Y)
		}
		directions[sym] = dir
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	return DirectionMapping{directions: directions, symbols: symbols}, nil
}

// Lookup returns the direction bound to sym
func (m DirectionMapping) Lookup(sym Symbol) (physics.Vector2D, bool) {
	dir, ok := m.directions[sym]
	return dir, ok
}

// Symbols returns the mapped symbols in sorted order
func (m DirectionMapping) Symbols() []Symbol {
	out := make([]Symbol, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// Bindings returns a copy of the underlying table
func (m DirectionMapping) Bindings() map[Symbol]physics.Vector2D {
	out := make(map[Symbol]physics.Vector2D, len(m.directions))
	for sym, dir := range m.directions {
		out[sym] = dir
	}
	return out
}

// Len returns the number of mapped symbols
func (m DirectionMapping) Len() int {
	return len(m.directions)
}

// Resolve sums the directions of every held symbol that is mapped.
// Unmapped symbols are ignored. The result is not normalized: opposite
// keys cancel to zero and orthogonal keys give a diagonal longer than 1.
func (m DirectionMapping) Resolve(held Held) physics.Vector2D {
	var intent physics.Vector2D
	for _, sym := range held {
		if dir, ok := m.directions[sym]; ok {
			intent = intent.Add(dir)
		}
	}
	return intent
}
