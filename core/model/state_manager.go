package model

import (
	"fmt"
	"sync"
)

// RunState is the lifecycle state of an iterative run.
type RunState int

const (
	// Idle means no run has started yet.
	Idle RunState = iota
	// Running means a run is in progress; Round reports the current round.
	Running
	// Done means the last run completed all its rounds.
	Done
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// StateManager tracks Idle → Running(round) → Done in a thread-safe manner.
// Components embed it by composition.
type StateManager struct {
	mu    sync.RWMutex
	state RunState
	round int
	total int
}

// NewStateManager creates a StateManager in the Idle state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// State returns the current state and round.
func (s *StateManager) State() (RunState, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.round
}

// Start moves to Running with round 0 and the given number of rounds.
// It fails if a run is already in progress.
func (s *StateManager) Start(total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		return fmt.Errorf("run already in progress at round %d of %d", s.round, s.total)
	}
	s.state = Running
	s.round = 0
	s.total = total
	return nil
}

// Advance records that round has begun.
func (s *StateManager) Advance(round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = round
}

// Finish moves to Done.
func (s *StateManager) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Done
}

// Abort returns to Idle after a failed run.
func (s *StateManager) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.round = 0
}

// IsDone reports whether the last run completed.
func (s *StateManager) IsDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Done
}
