package input

import (
	"sort"
	"sync"
)

// Held is an immutable, sorted snapshot of held symbols
type Held []Symbol

// Contains reports whether sym is in the snapshot
func (h Held) Contains(sym Symbol) bool {
	i := sort.Search(len(h), func(i int) bool { return h[i] >= sym })
	return i < len(h) && h[i] == sym
}

// NewHeld builds a snapshot from arbitrary symbols, dropping duplicates
func NewHeld(symbols ...Symbol) Held {
	seen := make(map[Symbol]struct{}, len(symbols))
	out := make(Held, 0, len(symbols))
	for _, s := range symbols {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// State is the set of currently held symbols. Press and Release are
// called by the input collaborator; the simulation only reads snapshots.
type State struct {
	mu   sync.RWMutex
	down map[Symbol]struct{}
	// pressed since the last ClearPressed, for edge-triggered consumers
	pressed map[Symbol]struct{}
}

// NewState creates an empty input state
func NewState() *State {
	return &State{
		down:    make(map[Symbol]struct{}),
		pressed: make(map[Symbol]struct{}),
	}
}

// Press marks sym as held. It reports false if sym was already held.
func (s *State) Press(sym Symbol) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.down[sym]; ok {
		return false
	}
	s.down[sym] = struct{}{}
	s.pressed[sym] = struct{}{}
	return true
}

// Release marks sym as no longer held. It reports false if sym was not held.
func (s *State) Release(sym Symbol) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.down[sym]; !ok {
		return false
	}
	delete(s.down, sym)
	return true
}

// IsDown reports whether sym is currently held
func (s *State) IsDown(sym Symbol) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.down[sym]
	return ok
}

// JustPressed reports whether sym went down since the last ClearPressed
func (s *State) JustPressed(sym Symbol) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pressed[sym]
	return ok
}

// ClearPressed forgets press edges; call once per tick
func (s *State) ClearPressed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.pressed)
}

// Reset releases every symbol
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.down)
	clear(s.pressed)
}

// Snapshot returns the held symbols in sorted order
func (s *State) Snapshot() Held {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Held, 0, len(s.down))
	for sym := range s.down {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
