// Package watch polls a timer at a fixed interval and reports each state,
// logging transitions as they are observed.
package watch

import (
	"context"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/log"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// DefaultInterval is the polling period used when Watcher.Interval is
// unset.
const DefaultInterval = 200 * time.Millisecond

// Watcher drives a polling loop over a timer.
type Watcher struct {
	// Clock defaults to the wall clock.
	Clock timer.Clock

	// Interval between samples. Defaults to DefaultInterval.
	Interval time.Duration

	// Logger receives transition events. Nil disables event logging.
	Logger log.Logger

	// RunID and Source are copied into every event.
	RunID  string
	Source string
}

// Run samples t until it ends or ctx is done. fn, if non-nil, is called
// with every state including the final Ended. Run returns nil when the
// sequence ends and ctx.Err() when cancelled.
func (w *Watcher) Run(ctx context.Context, t *timer.Timer, fn func(timer.State)) error {
	it := t.Iterator(w.clock())
	return w.loop(ctx, func(now time.Time) (timer.State, bool) {
		return it.NextAt(now)
	}, fn)
}

// Follow is like Run but re-reads the timer through current on every tick,
// so pause changes made elsewhere are picked up. It stops at the first
// Ended state.
func (w *Watcher) Follow(ctx context.Context, current func() *timer.Timer, fn func(timer.State)) error {
	ended := false
	return w.loop(ctx, func(now time.Time) (timer.State, bool) {
		if ended {
			return nil, false
		}
		s := current().State(now)
		ended = s.Kind() == timer.KindEnded
		return s, true
	}, fn)
}

func (w *Watcher) loop(ctx context.Context, next func(time.Time) (timer.State, bool), fn func(timer.State)) error {
	clock := w.clock()
	logger := log.OrNoop(w.Logger)

	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var prev timer.State
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := clock.Now()
		s, ok := next(now)
		if !ok {
			return nil
		}

		for _, kind := range Diff(prev, s) {
			e := log.NewEvent(now, w.RunID, kind, s)
			e.Source = w.Source
			logger.Log(e)
		}
		if fn != nil {
			fn(s)
		}
		if s.Kind() == timer.KindEnded {
			return nil
		}
		prev = s

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) clock() timer.Clock {
	if w.Clock == nil {
		return timer.SystemClock{}
	}
	return w.Clock
}

// Diff returns the transitions between two consecutive samples. prev is nil
// for the first sample. A kind change is reported before a segment change.
func Diff(prev, next timer.State) []log.EventKind {
	if next == nil {
		return nil
	}
	if prev == nil {
		switch next.Kind() {
		case timer.KindRunning:
			return []log.EventKind{log.EventStarted}
		case timer.KindPaused:
			return []log.EventKind{log.EventPaused}
		default:
			return []log.EventKind{log.EventEnded}
		}
	}

	var out []log.EventKind
	if prev.Kind() != next.Kind() {
		switch next.Kind() {
		case timer.KindEnded:
			return []log.EventKind{log.EventEnded}
		case timer.KindPaused:
			out = append(out, log.EventPaused)
		case timer.KindRunning:
			out = append(out, log.EventResumed)
		}
	}
	if prev.Kind() != timer.KindEnded && position(prev) != position(next) {
		out = append(out, log.EventSegmentAdvanced)
	}
	return out
}

// position returns the active segment index, or -1 when no segment is
// active.
func position(s timer.State) int {
	switch v := s.(type) {
	case timer.Running:
		if !v.Exhausted {
			return v.Index()
		}
	case timer.Paused:
		if !v.Exhausted {
			return v.Index()
		}
	}
	return -1
}
