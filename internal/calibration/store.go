// Package calibration maps raw ensemble probabilities to empirically
// accurate ones and keeps the mapping fresh from realized outcomes.
package calibration

import (
	"sync/atomic"

	"github.com/yourusername/edge-engine/internal/models"
)

// Store holds the active CalibrationState behind a single atomically
// swappable reference. Readers always observe a complete snapshot; the
// refit loop is the only writer.
type Store struct {
	current atomic.Pointer[models.CalibrationState]
}

// NewStore creates an empty store (cold start: no snapshot yet)
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil before the first refit
func (s *Store) Current() *models.CalibrationState {
	return s.current.Load()
}

// Swap atomically replaces the active snapshot
func (s *Store) Swap(state *models.CalibrationState) {
	s.current.Store(state)
}

// CurrentVersion returns the active snapshot's version, or 0 before
// the first committed refit.
func (s *Store) CurrentVersion() int64 {
	state := s.current.Load()
	if state == nil {
		return 0
	}
	return state.Version
}
