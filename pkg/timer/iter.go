package timer

import (
	"iter"
	"time"
)

// Iterator is an explicit cursor over a Timer's states. The only thing it
// remembers is whether Ended has been returned.
type Iterator struct {
	timer *Timer
	clock Clock
	done  bool
}

// Iterator returns a fresh iterator sampling clock. A nil clock reads the
// wall clock.
func (t *Timer) Iterator(clock Clock) *Iterator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Iterator{timer: t, clock: clock}
}

// Next samples the state at the clock's current instant. It returns false
// once Ended has been returned by a previous call.
func (it *Iterator) Next() (State, bool) {
	if it.done {
		return nil, false
	}
	return it.NextAt(it.clock.Now())
}

// NextAt is like Next but samples the given instant.
func (it *Iterator) NextAt(now time.Time) (State, bool) {
	if it.done {
		return nil, false
	}

	s := it.timer.State(now)
	if s.Kind() == KindEnded {
		it.done = true
	}
	return s, true
}

// Done reports whether the iterator is exhausted.
func (it *Iterator) Done() bool {
	return it.done
}

// States returns a lazy sequence of states sampled from clock, ending after
// the first Ended state. Each range over the sequence starts from the
// clock's current instant.
func (t *Timer) States(clock Clock) iter.Seq[State] {
	return func(yield func(State) bool) {
		it := t.Iterator(clock)
		for {
			s, ok := it.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}
