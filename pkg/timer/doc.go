// Package timer computes the state of a sequence of countdown timers.
//
// A Timer is an immutable aggregate of an ordered segment list, the instant
// the sequence was started, and the log of pause intervals recorded since.
// Every query is a pure function of that history and the query instant:
// nothing is cached between calls and nothing ticks in the background, so a
// Timer may be shared between goroutines without locking.
//
// # States
//
// State(now) returns one of three variants:
//
//   - Running: a segment is counting down; carries the time left in the
//     segment and in the whole sequence.
//   - Paused: the last pause interval is still open; time stops accruing at
//     the instant the pause began.
//   - Ended: every segment has elapsed and no pause is open.
//
// Consumers should switch on the concrete type:
//
//	switch s := t.State(now).(type) {
//	case timer.Running:
//	case timer.Paused:
//	case timer.Ended:
//	}
//
// # Pauses
//
// Pauses are supplied in chronological order and are never sorted. Only the
// last pause may be open (EndedAt == nil). An open pause earlier in the list
// contributes nothing to the pause total.
//
// When the pause history changes, build a new Timer (WithPauses) rather
// than mutating the old one.
//
// # Iteration
//
// States returns a lazy iter.Seq that samples the clock once per step and
// stops after yielding Ended. It never sleeps; pacing is up to the consumer
// (see package watch). Ranging over it again restarts from the current
// instant.
package timer
