package timer

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/duration"
)

// Config holds the inputs for New.
type Config struct {
	// Segments is the ordered timer list. Entries may be time.Duration,
	// any integer or float kind (milliseconds), json.Number, or a duration
	// string such as "10:00". Other entries are dropped.
	Segments []any

	// StartedAt is mandatory.
	StartedAt *time.Time

	// Pauses in chronological order. Defaults to none.
	Pauses []Pause

	// Strict makes New fail on the first invalid segment instead of
	// dropping it.
	Strict bool
}

// Timer is an immutable sequence of countdown segments with its start
// instant and pause history.
type Timer struct {
	segments  []time.Duration
	startedAt time.Time
	pauses    []Pause
}

// New builds a Timer from cfg.
func New(cfg Config) (*Timer, error) {
	if cfg.StartedAt == nil {
		return nil, &MissingFieldError{Field: "startedAt"}
	}

	segments := make([]time.Duration, 0, len(cfg.Segments))
	for i, v := range cfg.Segments {
		d, err := normalizeSegment(v)
		if err != nil {
			if cfg.Strict {
				return nil, &SegmentError{Index: i, Value: v, Cause: err}
			}
			continue
		}
		segments = append(segments, d)
	}

	return &Timer{
		segments:  segments,
		startedAt: *cfg.StartedAt,
		pauses:    copyPauses(cfg.Pauses),
	}, nil
}

// FromDurations builds a Timer from already parsed segments.
func FromDurations(startedAt time.Time, segments []time.Duration, pauses ...Pause) *Timer {
	return &Timer{
		segments:  append([]time.Duration(nil), segments...),
		startedAt: startedAt,
		pauses:    copyPauses(pauses),
	}
}

// WithPauses returns a new Timer with the same segments and start instant
// and the given pause history. t is left untouched.
func (t *Timer) WithPauses(pauses ...Pause) *Timer {
	return &Timer{
		segments:  t.segments,
		startedAt: t.startedAt,
		pauses:    copyPauses(pauses),
	}
}

// Segments returns a copy of the segment list.
func (t *Timer) Segments() []time.Duration {
	return append([]time.Duration(nil), t.segments...)
}

// StartedAt returns the instant the sequence started.
func (t *Timer) StartedAt() time.Time {
	return t.startedAt
}

// Pauses returns a copy of the pause history.
func (t *Timer) Pauses() []Pause {
	return copyPauses(t.pauses)
}

// TotalDuration returns the sum of all segments.
func (t *Timer) TotalDuration() time.Duration {
	var total time.Duration
	for _, d := range t.segments {
		total += d
	}
	return total
}

// IsPaused reports whether the last recorded pause is still open.
func (t *Timer) IsPaused() bool {
	return len(t.pauses) > 0 && t.pauses[len(t.pauses)-1].IsOpen()
}

// EndsAt returns the projected end of the sequence. The end is undefined
// (ok == false) while paused.
func (t *Timer) EndsAt() (end time.Time, ok bool) {
	if t.IsPaused() {
		return time.Time{}, false
	}
	return t.startedAt.Add(totalPauseTime(t.pauses) + t.TotalDuration()), true
}

// IsEnded reports whether the projected end is at or before now.
func (t *Timer) IsEnded(now time.Time) bool {
	end, ok := t.EndsAt()
	return ok && !end.After(now)
}

// ElapsedTime returns the running time since the start, excluding pauses.
// The result is not clamped and is negative when now precedes the start.
func (t *Timer) ElapsedTime(now time.Time) time.Duration {
	if t.IsPaused() {
		last := len(t.pauses) - 1
		return t.pauses[last].StartedAt.Sub(t.startedAt) - totalPauseTime(t.pauses[:last])
	}
	return now.Sub(t.startedAt) - totalPauseTime(t.pauses)
}

// State returns the state of the sequence at now.
func (t *Timer) State(now time.Time) State {
	end, hasEnd := t.EndsAt()
	if hasEnd && !end.After(now) {
		return Ended{EndedAt: end, PastTimers: t.Segments()}
	}

	elapsed := t.ElapsedTime(now)
	cursor := t.locate(elapsed)

	if t.IsPaused() || !hasEnd {
		return Paused{Cursor: cursor}
	}

	return Running{
		Cursor:             cursor,
		TotalRemainingTime: end.Sub(t.startedAt) - elapsed,
	}
}

// locate walks the segments, consuming elapsed time in order. A segment
// with zero or less remaining is done.
func (t *Timer) locate(consumed time.Duration) Cursor {
	var remaining time.Duration

	i := 0
	for ; i < len(t.segments); i++ {
		remaining = t.segments[i] - consumed
		if remaining > 0 {
			break
		}
		consumed = max(consumed-t.segments[i], 0)
	}

	c := Cursor{
		RemainingTime: remaining,
		PastTimers:    t.Segments()[:i],
		FutureTimers:  []time.Duration{},
	}
	if i < len(t.segments) {
		c.CurrentTimer = t.segments[i]
		c.FutureTimers = append(c.FutureTimers, t.segments[i+1:]...)
	} else {
		c.Exhausted = true
	}
	return c
}

// normalizeSegment converts a raw segment entry into a duration. Numbers
// are milliseconds. Values that overflow a time.Duration are invalid.
func normalizeSegment(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		return duration.Parse(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return fromIntMillis(n)
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		return fromFloatMillis(f)
	case float64:
		return fromFloatMillis(x)
	case float32:
		return fromFloatMillis(float64(x))
	case int:
		return fromIntMillis(int64(x))
	case int8:
		return fromIntMillis(int64(x))
	case int16:
		return fromIntMillis(int64(x))
	case int32:
		return fromIntMillis(int64(x))
	case int64:
		return fromIntMillis(x)
	case uint:
		return fromUintMillis(uint64(x))
	case uint8:
		return fromUintMillis(uint64(x))
	case uint16:
		return fromUintMillis(uint64(x))
	case uint32:
		return fromUintMillis(uint64(x))
	case uint64:
		return fromUintMillis(x)
	default:
		return 0, ErrInvalidSegment
	}
}

func fromIntMillis(n int64) (time.Duration, error) {
	d, err := duration.FromMillisecondsChecked(n)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSegment, err)
	}
	return d, nil
}

func fromUintMillis(n uint64) (time.Duration, error) {
	if n > uint64(duration.MaxMilliseconds) {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSegment, duration.ErrOutOfRange)
	}
	return duration.FromMilliseconds(int64(n)), nil
}

func fromFloatMillis(f float64) (time.Duration, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidSegment
	}
	if math.Abs(f) > float64(duration.MaxMilliseconds) {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSegment, duration.ErrOutOfRange)
	}
	return time.Duration(math.Round(f * float64(time.Millisecond))), nil
}
