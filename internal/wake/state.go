package wake

import (
	"sync"
	"sync/atomic"

	"github.com/scienceol/tea/internal/power"
)

// State is the process-wide wake context shared by the control layer and
// every Service instance.
//
// The awake flag is the single source of truth for whether a wake loop
// should keep running; it is lock-free and last-write-wins. The mode cell is
// guarded by a mutex held only while copying the value in or out.
type State struct {
	awake atomic.Bool

	mu   sync.Mutex
	mode power.ScreenMode
}

// NewState returns a State initialized to awake and mode.
func NewState(awake bool, mode power.ScreenMode) *State {
	s := &State{mode: mode}
	s.awake.Store(awake)
	return s
}

// Awake reports whether the wake loop should run.
func (s *State) Awake() bool {
	return s.awake.Load()
}

// SetAwake stores the flag.
func (s *State) SetAwake(v bool) {
	s.awake.Store(v)
}

// Mode returns a copy of the current screen mode.
func (s *State) Mode() power.ScreenMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode overwrites the screen mode.
func (s *State) SetMode(m power.ScreenMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}
