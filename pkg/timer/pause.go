package timer

import "time"

// Pause is a recorded interval during which elapsed time does not accrue.
type Pause struct {
	StartedAt time.Time
	// EndedAt is nil while the pause is still open.
	EndedAt *time.Time
}

// OpenPause returns a pause that started at t and has not ended.
func OpenPause(t time.Time) Pause {
	return Pause{StartedAt: t}
}

// ClosedPause returns a pause spanning [start, end].
func ClosedPause(start, end time.Time) Pause {
	return Pause{StartedAt: start, EndedAt: &end}
}

// IsOpen reports whether the pause has not ended yet.
func (p Pause) IsOpen() bool {
	return p.EndedAt == nil
}

// Duration returns the length of a closed pause. Open pauses contribute 0.
func (p Pause) Duration() time.Duration {
	if p.EndedAt == nil {
		return 0
	}
	return p.EndedAt.Sub(p.StartedAt)
}

// Close returns a copy of p ended at t.
func (p Pause) Close(t time.Time) Pause {
	return Pause{StartedAt: p.StartedAt, EndedAt: &t}
}

func totalPauseTime(pauses []Pause) time.Duration {
	var total time.Duration
	for _, p := range pauses {
		total += p.Duration()
	}
	return total
}

func copyPauses(pauses []Pause) []Pause {
	out := make([]Pause, len(pauses))
	for i, p := range pauses {
		out[i] = p
		if p.EndedAt != nil {
			end := *p.EndedAt
			out[i].EndedAt = &end
		}
	}
	return out
}
