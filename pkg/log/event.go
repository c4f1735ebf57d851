package log

import (
	"time"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// Event is one entry in a run's event trace.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp of the sample that produced the event.
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies the run (UUID).
	RunID string `cbor:"2,keyasint"`

	Kind EventKind `cbor:"3,keyasint"`

	// Segment is the index of the active segment, or the segment count once
	// the sequence has ended.
	Segment int `cbor:"4,keyasint"`

	// Remaining is the time left in the active segment.
	Remaining time.Duration `cbor:"5,keyasint"`

	// State is the full state at Timestamp.
	State *StateSnapshot `cbor:"6,keyasint,omitempty"`

	// Source names the producer (e.g. "cli", "web").
	Source string `cbor:"7,keyasint,omitempty"`
}

// EventKind classifies an Event.
type EventKind uint8

const (
	// EventObserved is a plain sample with no transition.
	EventObserved EventKind = 0
	// EventStarted is the first sample of a running sequence.
	EventStarted EventKind = 1
	// EventPaused marks a transition into Paused, or a first sample that is
	// already paused.
	EventPaused EventKind = 2
	// EventResumed marks a transition from Paused back to Running.
	EventResumed EventKind = 3
	// EventSegmentAdvanced marks a change of the active segment.
	EventSegmentAdvanced EventKind = 4
	// EventEnded marks the terminal state.
	EventEnded EventKind = 5
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventObserved:
		return "OBSERVED"
	case EventStarted:
		return "STARTED"
	case EventPaused:
		return "PAUSED"
	case EventResumed:
		return "RESUMED"
	case EventSegmentAdvanced:
		return "SEGMENT_ADVANCED"
	case EventEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// ParseEventKind parses a name returned by EventKind.String. Matching is
// exact.
func ParseEventKind(s string) (EventKind, bool) {
	for k := EventObserved; k <= EventEnded; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// StateSnapshot is the CBOR form of a timer.State. Durations are
// milliseconds.
type StateSnapshot struct {
	Kind string `cbor:"1,keyasint"`

	RemainingMs      int64 `cbor:"2,keyasint,omitempty"`
	TotalRemainingMs int64 `cbor:"3,keyasint,omitempty"`

	PastTimers   []int64 `cbor:"4,keyasint"`
	CurrentTimer *int64  `cbor:"5,keyasint,omitempty"`
	FutureTimers []int64 `cbor:"6,keyasint,omitempty"`

	EndedAt *time.Time `cbor:"7,keyasint,omitempty"`
}

// Snapshot converts s for logging. It returns nil for a nil state.
func Snapshot(s timer.State) *StateSnapshot {
	if s == nil {
		return nil
	}

	snap := &StateSnapshot{
		Kind:       s.Kind().String(),
		PastTimers: duration.MillisecondsList(s.Past()),
	}

	switch v := s.(type) {
	case timer.Running:
		snap.TotalRemainingMs = duration.Milliseconds(v.TotalRemainingTime)
		fillCursor(snap, v.Cursor)
	case timer.Paused:
		fillCursor(snap, v.Cursor)
	case timer.Ended:
		end := v.EndedAt.UTC()
		snap.EndedAt = &end
	}
	return snap
}

func fillCursor(snap *StateSnapshot, c timer.Cursor) {
	snap.RemainingMs = duration.Milliseconds(c.RemainingTime)
	snap.FutureTimers = duration.MillisecondsList(c.FutureTimers)
	if !c.Exhausted {
		cur := duration.Milliseconds(c.CurrentTimer)
		snap.CurrentTimer = &cur
	}
}

// NewEvent builds an event of the given kind from a sampled state. Segment
// and Remaining are derived from the state.
func NewEvent(at time.Time, runID string, kind EventKind, s timer.State) Event {
	e := Event{
		Timestamp: at,
		RunID:     runID,
		Kind:      kind,
		State:     Snapshot(s),
	}

	switch v := s.(type) {
	case timer.Running:
		e.Segment = v.Index()
		e.Remaining = v.RemainingTime
	case timer.Paused:
		e.Segment = v.Index()
		e.Remaining = v.RemainingTime
	case timer.Ended:
		e.Segment = len(v.PastTimers)
	}
	return e
}
