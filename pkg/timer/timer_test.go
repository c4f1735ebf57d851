package timer_test

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

var now = time.Date(2025, 7, 1, 10, 15, 0, 0, time.UTC)

func newTimer(t *testing.T, startedAt time.Time, segments []any, pauses ...timer.Pause) *timer.Timer {
	t.Helper()
	tm, err := timer.New(timer.Config{Segments: segments, StartedAt: &startedAt, Pauses: pauses})
	require.NoError(t, err)
	return tm
}

func TestStateRunning(t *testing.T) {
	startedAt := now.Add(-15 * time.Minute)
	tm := newTimer(t, startedAt, []any{"00:10:00", "00:25:00", "00:10:00"})

	assert.Equal(t, timer.Running{
		Cursor: timer.Cursor{
			RemainingTime: 20 * time.Minute,
			PastTimers:    []time.Duration{10 * time.Minute},
			CurrentTimer:  25 * time.Minute,
			FutureTimers:  []time.Duration{10 * time.Minute},
		},
		TotalRemainingTime: 30 * time.Minute,
	}, tm.State(now))
}

func TestElapsedTimeWithOpenPause(t *testing.T) {
	startedAt := now.Add(-15 * time.Minute)
	tm := newTimer(t, startedAt, []any{"00:10:00", "00:25:00"},
		timer.OpenPause(startedAt.Add(5*time.Minute)))

	assert.Equal(t, 5*time.Minute, tm.ElapsedTime(now))
	assert.True(t, tm.IsPaused())

	_, ok := tm.EndsAt()
	assert.False(t, ok, "EndsAt should be undefined while paused")
}

func TestStatePaused(t *testing.T) {
	startedAt := now.Add(-15 * time.Minute)
	tm := newTimer(t, startedAt, []any{"00:10:00", "00:25:00", "00:10:00"},
		timer.OpenPause(startedAt.Add(5*time.Minute)))

	assert.Equal(t, timer.Paused{
		Cursor: timer.Cursor{
			RemainingTime: 5 * time.Minute,
			PastTimers:    []time.Duration{},
			CurrentTimer:  10 * time.Minute,
			FutureTimers:  []time.Duration{25 * time.Minute, 10 * time.Minute},
		},
	}, tm.State(now))
}

func TestStateAtStart(t *testing.T) {
	segments := []time.Duration{3 * time.Minute, time.Minute}
	tm := timer.FromDurations(now, segments)

	s, ok := tm.State(now).(timer.Running)
	require.True(t, ok, "state at start should be Running")
	assert.Equal(t, segments[0], s.CurrentTimer)
	assert.Equal(t, segments[0], s.RemainingTime)
	assert.Equal(t, 4*time.Minute, s.TotalRemainingTime)
	assert.Empty(t, s.PastTimers)
}

func TestStateAllZeroSegmentsEndsImmediately(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{0, 0})

	s, ok := tm.State(now).(timer.Ended)
	require.True(t, ok)
	assert.True(t, s.EndedAt.Equal(now))
	assert.Equal(t, []time.Duration{0, 0}, s.PastTimers)
}

func TestElapsedTimeBeforeStartIsNegative(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Minute})

	assert.Equal(t, -30*time.Second, tm.ElapsedTime(now.Add(-30*time.Second)))

	s, ok := tm.State(now.Add(-30 * time.Second)).(timer.Running)
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, s.RemainingTime)
	assert.Equal(t, 90*time.Second, s.TotalRemainingTime)
}

func TestStateIsIdempotent(t *testing.T) {
	startedAt := now.Add(-7 * time.Minute)
	tm := newTimer(t, startedAt, []any{"5:00", "5:00"},
		timer.ClosedPause(startedAt.Add(time.Minute), startedAt.Add(2*time.Minute)))

	first := tm.State(now)
	second := tm.State(now)
	assert.Equal(t, first, second)
	assert.True(t, timer.Equal(first, second))
}

func TestStateSegmentBoundaryAdvancesEagerly(t *testing.T) {
	startedAt := now.Add(-10 * time.Minute)
	tm := newTimer(t, startedAt, []any{"10:00", "25:00"})

	s, ok := tm.State(now).(timer.Running)
	require.True(t, ok)
	assert.Equal(t, []time.Duration{10 * time.Minute}, s.PastTimers)
	assert.Equal(t, 25*time.Minute, s.CurrentTimer)
	assert.Equal(t, 25*time.Minute, s.RemainingTime)
	assert.Equal(t, 1, s.Index())
}

func TestStateEnded(t *testing.T) {
	startedAt := now.Add(-time.Hour)
	segments := []any{"10:00", "25:00", "10:00"}
	tm := newTimer(t, startedAt, segments,
		timer.ClosedPause(startedAt.Add(time.Minute), startedAt.Add(3*time.Minute)))

	want := timer.Ended{
		EndedAt:    startedAt.Add(47 * time.Minute),
		PastTimers: []time.Duration{10 * time.Minute, 25 * time.Minute, 10 * time.Minute},
	}
	assert.Equal(t, want, tm.State(now))

	// Terminal state is stable at later instants.
	assert.Equal(t, want, tm.State(now.Add(24*time.Hour)))
	assert.True(t, tm.IsEnded(now))
}

func TestStateEndsExactlyAtProjectedEnd(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Minute})

	assert.Equal(t, timer.KindRunning, tm.State(now.Add(time.Minute-time.Millisecond)).Kind())
	assert.Equal(t, timer.KindEnded, tm.State(now.Add(time.Minute)).Kind())
}

func TestClosedPauseShiftsEnd(t *testing.T) {
	startedAt := now.Add(-12 * time.Minute)
	tm := newTimer(t, startedAt, []any{"10:00", "10:00"},
		timer.ClosedPause(startedAt.Add(2*time.Minute), startedAt.Add(5*time.Minute)))

	end, ok := tm.EndsAt()
	require.True(t, ok)
	assert.Equal(t, startedAt.Add(23*time.Minute), end)
	assert.Equal(t, 9*time.Minute, tm.ElapsedTime(now))

	s, ok := tm.State(now).(timer.Running)
	require.True(t, ok)
	assert.Equal(t, time.Minute, s.RemainingTime)
	// Total remaining is measured from the start against the projected end,
	// so closed pause time stays in it.
	assert.Equal(t, 14*time.Minute, s.TotalRemainingTime)
	assert.Equal(t, 11*time.Minute, end.Sub(now))
}

func TestOpenPauseBeforeLastContributesNothing(t *testing.T) {
	startedAt := now.Add(-10 * time.Minute)
	tm := newTimer(t, startedAt, []any{"30:00"},
		timer.OpenPause(startedAt.Add(time.Minute)),
		timer.ClosedPause(startedAt.Add(2*time.Minute), startedAt.Add(4*time.Minute)))

	assert.False(t, tm.IsPaused())
	assert.Equal(t, 8*time.Minute, tm.ElapsedTime(now))

	end, ok := tm.EndsAt()
	require.True(t, ok)
	assert.Equal(t, startedAt.Add(32*time.Minute), end)
}

func TestPausedPastExhaustionStaysPaused(t *testing.T) {
	startedAt := now.Add(-10 * time.Minute)
	tm := newTimer(t, startedAt, []any{"1:00"},
		timer.OpenPause(startedAt.Add(2*time.Minute)))

	s, ok := tm.State(now).(timer.Paused)
	require.True(t, ok)
	assert.True(t, s.Exhausted)
	assert.Equal(t, []time.Duration{time.Minute}, s.PastTimers)
	assert.Empty(t, s.FutureTimers)

	_, _, hasCurrent := timer.CurrentOf(s)
	assert.False(t, hasCurrent)
}

func TestStatePartitionsSegments(t *testing.T) {
	segments := []time.Duration{2 * time.Minute, 0, 3 * time.Minute, time.Minute}
	tm := timer.FromDurations(now, segments)

	for offset := time.Duration(0); offset < 6*time.Minute; offset += 17 * time.Second {
		switch s := tm.State(now.Add(offset)).(type) {
		case timer.Running:
			assert.Equal(t, segments, s.Segments(), "offset %v", offset)
		case timer.Paused:
			t.Fatalf("unexpected Paused at offset %v", offset)
		case timer.Ended:
			assert.Equal(t, segments, s.PastTimers)
		}
	}
}

func TestNewMissingStartedAt(t *testing.T) {
	_, err := timer.New(timer.Config{Segments: []any{"10:00"}})
	require.Error(t, err)

	var mf *timer.MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, "startedAt", mf.Field)
	assert.ErrorIs(t, err, timer.ErrMissingField)
}

func TestNewDropsInvalidSegments(t *testing.T) {
	tm := newTimer(t, now, []any{
		"10:00",
		600000,
		1.5e3,
		math.NaN(),
		math.Inf(1),
		"1:2:3:4",
		"abc",
		true,
		nil,
		time.Minute,
		json.Number("2000"),
		"3000000:00:00",
		int64(1e13),
		1e16,
		uint64(1 << 63),
		json.Number("10000000000000"),
	})

	assert.Equal(t, []time.Duration{
		10 * time.Minute,
		10 * time.Minute,
		1500 * time.Millisecond,
		time.Minute,
		2 * time.Second,
	}, tm.Segments())
}

func TestNewStrictRejectsFirstInvalidSegment(t *testing.T) {
	_, err := timer.New(timer.Config{
		Segments:  []any{"10:00", math.NaN(), "1:2:3:4"},
		StartedAt: &now,
		Strict:    true,
	})
	require.Error(t, err)

	var se *timer.SegmentError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.ErrorIs(t, err, timer.ErrInvalidSegment)
}

func TestNewStrictRejectsOverflowingSegment(t *testing.T) {
	for _, v := range []any{"3000000:00:00", int64(1e13), 1e16, uint64(1 << 63)} {
		_, err := timer.New(timer.Config{
			Segments:  []any{"10:00", v},
			StartedAt: &now,
			Strict:    true,
		})
		require.Error(t, err, "%v", v)
		assert.ErrorIs(t, err, timer.ErrInvalidSegment)
		assert.ErrorIs(t, err, duration.ErrOutOfRange)

		var se *timer.SegmentError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 1, se.Index)
	}
}

func TestOverflowingSegmentDoesNotEndTimer(t *testing.T) {
	tm := newTimer(t, now, []any{"3000000:00:00", "10:00"})

	assert.Equal(t, []time.Duration{10 * time.Minute}, tm.Segments())
	assert.Equal(t, timer.KindRunning, tm.State(now.Add(time.Minute)).Kind())
}

func TestWithPausesDoesNotMutate(t *testing.T) {
	startedAt := now.Add(-5 * time.Minute)
	tm := newTimer(t, startedAt, []any{"10:00"})
	paused := tm.WithPauses(timer.OpenPause(startedAt.Add(time.Minute)))

	assert.False(t, tm.IsPaused())
	assert.True(t, paused.IsPaused())
	assert.Equal(t, timer.KindRunning, tm.State(now).Kind())
	assert.Equal(t, timer.KindPaused, paused.State(now).Kind())
	assert.Equal(t, tm.Segments(), paused.Segments())
}

func TestAccessorsReturnCopies(t *testing.T) {
	tm := timer.FromDurations(now, []time.Duration{time.Minute},
		timer.ClosedPause(now, now.Add(time.Second)))

	segs := tm.Segments()
	segs[0] = time.Hour
	pauses := tm.Pauses()
	*pauses[0].EndedAt = now.Add(time.Hour)

	assert.Equal(t, []time.Duration{time.Minute}, tm.Segments())
	assert.Equal(t, time.Second, tm.Pauses()[0].Duration())
}

func TestStateConcurrentQueries(t *testing.T) {
	startedAt := now.Add(-15 * time.Minute)
	tm := newTimer(t, startedAt, []any{"10:00", "25:00", "10:00"})
	want := tm.State(now)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := tm.State(now); !timer.Equal(want, got) {
					t.Errorf("concurrent State() = %v, want %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEmptySegmentList(t *testing.T) {
	tm := newTimer(t, now, nil)

	s, ok := tm.State(now).(timer.Ended)
	require.True(t, ok)
	assert.True(t, s.EndedAt.Equal(now))
	assert.Empty(t, s.PastTimers)
}
