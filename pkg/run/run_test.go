package run_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

var base = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

// fixture: three segments started at base+5m with one closed 5s pause.
func fixture() *run.Run {
	r := run.New("seq-1", "fixture", []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}, base.Add(5*time.Minute))
	r.Pauses = []timer.Pause{timer.ClosedPause(base.Add(5*time.Minute+5*time.Second), base.Add(5*time.Minute+10*time.Second))}
	return r
}

func TestNewAssignsID(t *testing.T) {
	a := run.New("s", "n", []time.Duration{time.Second}, base)
	b := run.New("s", "n", []time.Duration{time.Second}, base)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestProjectionRunning(t *testing.T) {
	p := fixture().Projection(base.Add(5*time.Minute + 16*time.Second))

	s, ok := p.State.(timer.Running)
	require.True(t, ok)
	assert.Equal(t, 19*time.Second, s.RemainingTime)
	assert.Equal(t, []time.Duration{10 * time.Second}, s.PastTimers)
	assert.Equal(t, 20*time.Second, s.CurrentTimer)
	assert.Equal(t, []time.Duration{30 * time.Second}, s.FutureTimers)

	assert.Equal(t, int64(49000), p.TotalRemainingMs)
	require.NotNil(t, p.EndsAt)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 6, 5, 0, time.UTC), *p.EndsAt)
	assert.InDelta(t, 19.0/20.0*360, p.ProgressDegrees, 1e-9)
}

func TestProjectionPaused(t *testing.T) {
	r := fixture()
	require.NoError(t, r.Pause(base.Add(5*time.Minute+15*time.Second)))

	p := r.Projection(base.Add(5*time.Minute + 16*time.Second))
	assert.Equal(t, timer.KindPaused, p.State.Kind())
	assert.Nil(t, p.EndsAt)
	assert.Zero(t, p.TotalRemainingMs)
}

func TestProjectionEnded(t *testing.T) {
	p := fixture().Projection(base.Add(10 * time.Minute))

	assert.Equal(t, timer.KindEnded, p.State.Kind())
	require.NotNil(t, p.EndsAt)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 6, 5, 0, time.UTC), *p.EndsAt)
	assert.Zero(t, p.ProgressDegrees)
}

func TestProjectionJSON(t *testing.T) {
	p := fixture().Projection(base.Add(5*time.Minute + 16*time.Second))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "fixture", got["sequenceName"])
	assert.Equal(t, "2025-05-01T10:06:05Z", got["endsAt"])

	state, ok := got["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "running", state["state"])
	assert.Equal(t, float64(19000), state["remainingTimeMs"])
}

func TestPauseUnpause(t *testing.T) {
	r := run.New("", "x", []time.Duration{time.Minute}, base)

	require.NoError(t, r.Pause(base.Add(10*time.Second)))
	assert.True(t, r.IsPaused())
	assert.ErrorIs(t, r.Pause(base.Add(20*time.Second)), run.ErrAlreadyPaused)

	require.NoError(t, r.Unpause(base.Add(40*time.Second)))
	assert.False(t, r.IsPaused())
	assert.ErrorIs(t, r.Unpause(base.Add(50*time.Second)), run.ErrNotPaused)

	end, ok := r.Timer().EndsAt()
	require.True(t, ok)
	assert.Equal(t, base.Add(90*time.Second), end)
}

func TestTransitionsAfterEnd(t *testing.T) {
	r := run.New("", "x", []time.Duration{time.Minute}, base)
	later := base.Add(time.Hour)

	assert.True(t, r.IsEnded(later))
	assert.ErrorIs(t, r.Pause(later), run.ErrEnded)
	assert.ErrorIs(t, r.Unpause(later), run.ErrEnded)
	assert.NoError(t, r.Toggle(later))
	assert.Empty(t, r.Pauses)
}

func TestPausedRunNeverEnds(t *testing.T) {
	r := run.New("", "x", []time.Duration{time.Minute}, base)
	require.NoError(t, r.Pause(base.Add(30*time.Second)))

	assert.False(t, r.IsEnded(base.Add(24*time.Hour)))
	require.NoError(t, r.Unpause(base.Add(24*time.Hour)))
	assert.Equal(t, timer.KindRunning, r.State(base.Add(24*time.Hour+10*time.Second)).Kind())
}

func TestToggle(t *testing.T) {
	r := run.New("", "x", []time.Duration{time.Minute}, base)

	require.NoError(t, r.Toggle(base.Add(time.Second)))
	assert.True(t, r.IsPaused())
	require.NoError(t, r.Toggle(base.Add(2*time.Second)))
	assert.False(t, r.IsPaused())
	require.Len(t, r.Pauses, 1)
	assert.Equal(t, time.Second, r.Pauses[0].Duration())
}

func TestFromSequence(t *testing.T) {
	s := &sequence.Sequence{
		Name:      "replay",
		Timers:    []string{"1:00", "2:00"},
		StartedAt: "2025-05-01T10:00:00Z",
		Pauses:    []timer.PauseInput{{StartedAt: "2025-05-01T10:00:30Z"}},
	}

	r, err := run.FromSequence(s, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "replay", r.SequenceName)
	assert.True(t, r.StartedAt.Equal(base))
	assert.True(t, r.IsPaused())

	_, err = run.FromSequence(&sequence.Sequence{Name: "bad", Timers: []string{"x"}}, base)
	assert.ErrorIs(t, err, timer.ErrInvalidSegment)
}

func TestClone(t *testing.T) {
	r := fixture()
	c := r.Clone()
	require.NoError(t, c.Pause(base.Add(5*time.Minute+20*time.Second)))

	assert.Len(t, r.Pauses, 1)
	assert.Len(t, c.Pauses, 2)
	assert.Equal(t, r.ID, c.ID)
}
