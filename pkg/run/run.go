// Package run tracks a started sequence: its segments, start instant and
// pause history. Derived state is never stored; it is recomputed from the
// history with package timer.
package run

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzt-timers/mzt-go/pkg/sequence"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// Transition errors.
var (
	ErrAlreadyPaused = errors.New("already paused")
	ErrNotPaused     = errors.New("not paused")
	ErrEnded         = errors.New("ended")
)

// Run is one execution of a sequence.
type Run struct {
	ID           string
	SequenceID   string
	SequenceName string
	Segments     []time.Duration
	StartedAt    time.Time
	Pauses       []timer.Pause
}

// New starts a run of the given segments at now with a fresh ID.
func New(sequenceID, name string, segments []time.Duration, now time.Time) *Run {
	return &Run{
		ID:           uuid.New().String(),
		SequenceID:   sequenceID,
		SequenceName: name,
		Segments:     append([]time.Duration(nil), segments...),
		StartedAt:    now,
	}
}

// FromSequence starts a run of s. A sequence that carries its own
// started_at and pauses is resumed from that history.
func FromSequence(s *sequence.Sequence, now time.Time) (*Run, error) {
	t, err := s.Timer(now)
	if err != nil {
		return nil, fmt.Errorf("sequence %q: %w", s.Name, err)
	}
	r := New("", s.Name, t.Segments(), t.StartedAt())
	r.Pauses = t.Pauses()
	return r, nil
}

// Timer reconstructs the timer from the run's history.
func (r *Run) Timer() *timer.Timer {
	return timer.FromDurations(r.StartedAt, r.Segments, r.Pauses...)
}

// State returns the timer state at now.
func (r *Run) State(now time.Time) timer.State {
	return r.Timer().State(now)
}

// IsPaused reports whether the last pause is open.
func (r *Run) IsPaused() bool {
	return len(r.Pauses) > 0 && r.Pauses[len(r.Pauses)-1].IsOpen()
}

// IsEnded reports whether the run has ended at now. A paused run never
// ends.
func (r *Run) IsEnded(now time.Time) bool {
	return r.Timer().IsEnded(now)
}

// Pause opens a pause at now.
func (r *Run) Pause(now time.Time) error {
	if r.IsPaused() {
		return fmt.Errorf("run %s: %w", r.ID, ErrAlreadyPaused)
	}
	if r.IsEnded(now) {
		return fmt.Errorf("run %s: %w", r.ID, ErrEnded)
	}
	r.Pauses = append(r.Pauses, timer.OpenPause(now))
	return nil
}

// Unpause closes the open pause at now.
func (r *Run) Unpause(now time.Time) error {
	if r.IsEnded(now) {
		return fmt.Errorf("run %s: %w", r.ID, ErrEnded)
	}
	if !r.IsPaused() {
		return fmt.Errorf("run %s: %w", r.ID, ErrNotPaused)
	}
	last := len(r.Pauses) - 1
	r.Pauses[last] = r.Pauses[last].Close(now)
	return nil
}

// Toggle pauses a running run and resumes a paused one. It does nothing
// once the run has ended.
func (r *Run) Toggle(now time.Time) error {
	if r.IsEnded(now) {
		return nil
	}
	if r.IsPaused() {
		return r.Unpause(now)
	}
	return r.Pause(now)
}

// Clone returns a deep copy of r.
func (r *Run) Clone() *Run {
	c := *r
	c.Segments = append([]time.Duration(nil), r.Segments...)
	c.Pauses = r.Timer().Pauses()
	return &c
}
