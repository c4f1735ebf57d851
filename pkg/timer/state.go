package timer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/duration"
)

// Kind identifies a State variant.
type Kind uint8

const (
	// KindRunning indicates a segment is counting down.
	KindRunning Kind = iota

	// KindPaused indicates the last pause is open.
	KindPaused

	// KindEnded indicates every segment has elapsed.
	KindEnded
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRunning:
		return "running"
	case KindPaused:
		return "paused"
	case KindEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ParseKind parses a wire name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "running":
		return KindRunning, nil
	case "paused":
		return KindPaused, nil
	case "ended":
		return KindEnded, nil
	default:
		return 0, fmt.Errorf("unknown state %q", s)
	}
}

// State is the derived state of a Timer at one instant. It is implemented
// only by Running, Paused and Ended.
type State interface {
	Kind() Kind

	// Past returns the segments fully consumed, in order.
	Past() []time.Duration

	sealed()
}

// Cursor locates the active segment.
type Cursor struct {
	// RemainingTime left in CurrentTimer. Negative when the query instant
	// precedes the start; when Exhausted it holds the last (non-positive)
	// remainder.
	RemainingTime time.Duration

	PastTimers   []time.Duration
	CurrentTimer time.Duration
	FutureTimers []time.Duration

	// Exhausted is set when elapsed time consumed every segment, which can
	// only be observed while paused. CurrentTimer is zero then.
	Exhausted bool
}

// Index returns the position of CurrentTimer in the segment list.
func (c Cursor) Index() int {
	return len(c.PastTimers)
}

// Segments reassembles the full segment list.
func (c Cursor) Segments() []time.Duration {
	out := append([]time.Duration(nil), c.PastTimers...)
	if !c.Exhausted {
		out = append(out, c.CurrentTimer)
	}
	return append(out, c.FutureTimers...)
}

// Running is the state of a sequence that is counting down.
type Running struct {
	Cursor

	// TotalRemainingTime until the end of the last segment.
	TotalRemainingTime time.Duration
}

// Paused is the state of a sequence whose last pause is open.
type Paused struct {
	Cursor
}

// Ended is the terminal state.
type Ended struct {
	EndedAt    time.Time
	PastTimers []time.Duration
}

func (Running) Kind() Kind { return KindRunning }
func (Paused) Kind() Kind  { return KindPaused }
func (Ended) Kind() Kind   { return KindEnded }

func (s Running) Past() []time.Duration { return s.PastTimers }
func (s Paused) Past() []time.Duration  { return s.PastTimers }
func (s Ended) Past() []time.Duration   { return s.PastTimers }

func (Running) sealed() {}
func (Paused) sealed()  {}
func (Ended) sealed()   {}

// runningWire, pausedWire and endedWire are the JSON forms of the
// variants. Time fields are integer milliseconds; currentTimer is null when
// the cursor is exhausted.
type runningWire struct {
	State                string  `json:"state"`
	RemainingTimeMs      int64   `json:"remainingTimeMs"`
	TotalRemainingTimeMs int64   `json:"totalRemainingTimeMs"`
	PastTimers           []int64 `json:"pastTimers"`
	CurrentTimer         *int64  `json:"currentTimer"`
	FutureTimers         []int64 `json:"futureTimers"`
}

type pausedWire struct {
	State           string  `json:"state"`
	RemainingTimeMs int64   `json:"remainingTimeMs"`
	PastTimers      []int64 `json:"pastTimers"`
	CurrentTimer    *int64  `json:"currentTimer"`
	FutureTimers    []int64 `json:"futureTimers"`
}

type endedWire struct {
	State      string    `json:"state"`
	EndedAt    time.Time `json:"endedAt"`
	PastTimers []int64   `json:"pastTimers"`
}

// wireState accepts any of the variant forms.
type wireState struct {
	State                string     `json:"state"`
	RemainingTimeMs      *int64     `json:"remainingTimeMs"`
	TotalRemainingTimeMs *int64     `json:"totalRemainingTimeMs"`
	PastTimers           []int64    `json:"pastTimers"`
	CurrentTimer         *int64     `json:"currentTimer"`
	FutureTimers         []int64    `json:"futureTimers"`
	EndedAt              *time.Time `json:"endedAt"`
}

func (c Cursor) currentMs() *int64 {
	if c.Exhausted {
		return nil
	}
	ms := duration.Milliseconds(c.CurrentTimer)
	return &ms
}

// MarshalJSON encodes the state as a tagged object.
func (s Running) MarshalJSON() ([]byte, error) {
	return json.Marshal(runningWire{
		State:                KindRunning.String(),
		RemainingTimeMs:      duration.Milliseconds(s.RemainingTime),
		TotalRemainingTimeMs: duration.Milliseconds(s.TotalRemainingTime),
		PastTimers:           duration.MillisecondsList(s.PastTimers),
		CurrentTimer:         s.currentMs(),
		FutureTimers:         duration.MillisecondsList(s.FutureTimers),
	})
}

// MarshalJSON encodes the state as a tagged object.
func (s Paused) MarshalJSON() ([]byte, error) {
	return json.Marshal(pausedWire{
		State:           KindPaused.String(),
		RemainingTimeMs: duration.Milliseconds(s.RemainingTime),
		PastTimers:      duration.MillisecondsList(s.PastTimers),
		CurrentTimer:    s.currentMs(),
		FutureTimers:    duration.MillisecondsList(s.FutureTimers),
	})
}

// MarshalJSON encodes the state as a tagged object.
func (s Ended) MarshalJSON() ([]byte, error) {
	return json.Marshal(endedWire{
		State:      KindEnded.String(),
		EndedAt:    s.EndedAt.UTC(),
		PastTimers: duration.MillisecondsList(s.PastTimers),
	})
}

// UnmarshalState decodes a tagged state object produced by MarshalJSON.
func UnmarshalState(data []byte) (State, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	kind, err := ParseKind(w.State)
	if err != nil {
		return nil, err
	}

	if kind == KindEnded {
		if w.EndedAt == nil {
			return nil, &MissingFieldError{Field: "endedAt"}
		}
		return Ended{
			EndedAt:    *w.EndedAt,
			PastTimers: duration.FromMillisecondsList(w.PastTimers),
		}, nil
	}

	c := Cursor{
		PastTimers:   duration.FromMillisecondsList(w.PastTimers),
		FutureTimers: duration.FromMillisecondsList(w.FutureTimers),
		Exhausted:    w.CurrentTimer == nil,
	}
	if w.RemainingTimeMs != nil {
		c.RemainingTime = duration.FromMilliseconds(*w.RemainingTimeMs)
	}
	if w.CurrentTimer != nil {
		c.CurrentTimer = duration.FromMilliseconds(*w.CurrentTimer)
	}

	if kind == KindPaused {
		return Paused{Cursor: c}, nil
	}

	if w.TotalRemainingTimeMs == nil {
		return nil, &MissingFieldError{Field: "totalRemainingTimeMs"}
	}
	return Running{
		Cursor:             c,
		TotalRemainingTime: duration.FromMilliseconds(*w.TotalRemainingTimeMs),
	}, nil
}

// CurrentOf returns the active segment and the time left in it, if any.
func CurrentOf(s State) (current, remaining time.Duration, ok bool) {
	switch v := s.(type) {
	case Running:
		return v.CurrentTimer, v.RemainingTime, !v.Exhausted
	case Paused:
		return v.CurrentTimer, v.RemainingTime, !v.Exhausted
	default:
		return 0, 0, false
	}
}

// Equal reports whether two states are identical.
func Equal(a, b State) bool {
	switch x := a.(type) {
	case Running:
		y, ok := b.(Running)
		return ok && x.TotalRemainingTime == y.TotalRemainingTime && x.Cursor.equal(y.Cursor)
	case Paused:
		y, ok := b.(Paused)
		return ok && x.Cursor.equal(y.Cursor)
	case Ended:
		y, ok := b.(Ended)
		return ok && x.EndedAt.Equal(y.EndedAt) && durationsEqual(x.PastTimers, y.PastTimers)
	default:
		return a == nil && b == nil
	}
}

func (c Cursor) equal(o Cursor) bool {
	return c.RemainingTime == o.RemainingTime &&
		c.CurrentTimer == o.CurrentTimer &&
		c.Exhausted == o.Exhausted &&
		durationsEqual(c.PastTimers, o.PastTimers) &&
		durationsEqual(c.FutureTimers, o.FutureTimers)
}

func durationsEqual(a, b []time.Duration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
