package run

import (
	"time"

	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// Projection is the client-facing view of a run at one instant.
type Projection struct {
	RunID        string      `json:"runId"`
	SequenceName string      `json:"sequenceName,omitempty"`
	At           time.Time   `json:"at"`
	State        timer.State `json:"state"`

	// TotalRemainingMs is the wall-clock time until EndsAt. It is 0 while
	// paused and once ended.
	TotalRemainingMs int64 `json:"totalRemainingMs"`

	// EndsAt is the projected end for a running run and the actual end for
	// an ended one. It is nil while paused.
	EndsAt *time.Time `json:"endsAt"`

	// ProgressDegrees is RemainingTime/CurrentTimer scaled to a full
	// circle, or 0 without an active segment.
	ProgressDegrees float64 `json:"progressDegrees"`
}

// Projection computes the view of the run at now.
func (r *Run) Projection(now time.Time) Projection {
	t := r.Timer()
	s := t.State(now)

	p := Projection{
		RunID:           r.ID,
		SequenceName:    r.SequenceName,
		At:              now.UTC(),
		State:           s,
		ProgressDegrees: ProgressDegrees(s),
	}

	switch v := s.(type) {
	case timer.Ended:
		end := v.EndedAt.UTC()
		p.EndsAt = &end
	case timer.Running:
		if end, ok := t.EndsAt(); ok {
			end = end.UTC()
			p.EndsAt = &end
			p.TotalRemainingMs = end.Sub(now).Milliseconds()
		}
	}
	return p
}

// ProgressDegrees returns the fraction of the active segment still to run,
// in degrees.
func ProgressDegrees(s timer.State) float64 {
	current, remaining, ok := timer.CurrentOf(s)
	if !ok || current <= 0 {
		return 0
	}
	return float64(remaining) / float64(current) * 360
}
