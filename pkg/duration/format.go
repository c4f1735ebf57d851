package duration

import (
	"fmt"
	"time"
)

// Format renders d for display as "MM:SS", or "HH:MM:SS" once it reaches an
// hour. Fields are zero-padded to two digits; d is rounded to the nearest
// second and negative values display as "00:00".
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d.Round(time.Second) / time.Second)
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatList formats every duration in ds.
func FormatList(ds []time.Duration) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = Format(d)
	}
	return out
}
