package timer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzt-timers/mzt-go/pkg/timer"
	"github.com/mzt-timers/mzt-go/pkg/timer/mocks"
)

// steppingClock returns start, start+step, start+2*step, ... on each call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	calls := 0
	return func() time.Time {
		t := start.Add(time.Duration(calls) * step)
		calls++
		return t
	}
}

func TestStatesTerminatesWithEnded(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Second, time.Second})

	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().RunAndReturn(steppingClock(now, 500*time.Millisecond)).Times(5)

	var states []timer.State
	for s := range tm.States(clock) {
		states = append(states, s)
	}

	require.Len(t, states, 5)
	for _, s := range states[:4] {
		assert.Equal(t, timer.KindRunning, s.Kind())
	}
	assert.Equal(t, timer.KindEnded, states[4].Kind())

	second := states[2].(timer.Running)
	assert.Equal(t, 1, second.Index(), "boundary at 1s should advance to the second segment")
}

func TestStatesRestartsFromLiveInstant(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Minute})

	current := now
	clock := timer.ClockFunc(func() time.Time { return current })

	for s := range tm.States(clock) {
		assert.Equal(t, timer.KindRunning, s.Kind())
		break
	}

	current = now.Add(2 * time.Minute)
	var got []timer.State
	for s := range tm.States(clock) {
		got = append(got, s)
	}

	require.Len(t, got, 1)
	assert.Equal(t, timer.KindEnded, got[0].Kind())
}

func TestStatesPausedNeverEnds(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Second}, timer.OpenPause(now))
	clock := timer.ClockFunc(steppingClock(now, time.Hour))

	n := 0
	for s := range tm.States(clock) {
		assert.Equal(t, timer.KindPaused, s.Kind())
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 10, n)
}

func TestIteratorNextAt(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Minute})
	it := tm.Iterator(nil)

	s, ok := it.NextAt(now.Add(30 * time.Second))
	require.True(t, ok)
	assert.Equal(t, timer.KindRunning, s.Kind())
	assert.False(t, it.Done())

	s, ok = it.NextAt(now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, timer.KindEnded, s.Kind())
	assert.True(t, it.Done())

	s, ok = it.NextAt(now.Add(2 * time.Minute))
	assert.False(t, ok)
	assert.Nil(t, s)

	s, ok = it.Next()
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestIteratorDoesNotTouchTimer(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Minute})
	before := tm.State(now)

	it := tm.Iterator(timer.ClockFunc(func() time.Time { return now.Add(time.Hour) }))
	_, _ = it.Next()

	assert.Equal(t, before, tm.State(now))
}
