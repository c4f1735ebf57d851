// Package render turns timer states into display-ready views. It never
// touches a display surface itself; see package screen for a terminal
// front end.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// DefaultWidth is the progress bar width used when Config.Width is unset.
const DefaultWidth = 20

// Config selects what a View contains.
type Config struct {
	// ShowPast includes completed segments.
	ShowPast bool

	// ShowFuture includes upcoming segments.
	ShowFuture bool

	// Width of the text progress bar in cells.
	Width int
}

// View is a rendered state. Durations are formatted as clock text.
type View struct {
	Kind  timer.Kind
	Label string

	// Time left in the active segment, clamped at zero.
	Time string

	// Total time left, set only while running.
	Total string

	// Segment is the 1-based position of the active segment, 0 without one.
	Segment  int
	Segments int

	ProgressDegrees float64

	Past   []string
	Future []string
}

// Render builds the view of s.
func Render(cfg Config, s timer.State) View {
	v := View{
		Kind:            s.Kind(),
		Label:           s.Kind().String(),
		Time:            duration.Format(0),
		ProgressDegrees: run.ProgressDegrees(s),
	}

	var future []time.Duration
	switch st := s.(type) {
	case timer.Running:
		v.Time = duration.Format(st.RemainingTime)
		v.Total = duration.Format(st.TotalRemainingTime)
		future = st.FutureTimers
		v.position(st.Cursor)
	case timer.Paused:
		v.Time = duration.Format(st.RemainingTime)
		future = st.FutureTimers
		v.position(st.Cursor)
	case timer.Ended:
		v.Segments = len(st.PastTimers)
	}

	if cfg.ShowPast {
		v.Past = duration.FormatList(s.Past())
	}
	if cfg.ShowFuture {
		v.Future = duration.FormatList(future)
	}
	return v
}

func (v *View) position(c timer.Cursor) {
	v.Segments = len(c.Segments())
	if !c.Exhausted {
		v.Segment = c.Index() + 1
	}
}

// Bar draws the progress of the active segment as a row of width cells.
func Bar(v View, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	filled := int(v.ProgressDegrees / 360 * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// WriteText writes v as a single line of text.
func WriteText(w io.Writer, cfg Config, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%-7s %s", v.Label, v.Time)
	if v.Segment > 0 {
		fmt.Fprintf(&b, " [%d/%d] %s", v.Segment, v.Segments, Bar(v, cfg.Width))
	}
	if v.Total != "" {
		fmt.Fprintf(&b, " total %s", v.Total)
	}
	if len(v.Past) > 0 {
		fmt.Fprintf(&b, " past %s", strings.Join(v.Past, ","))
	}
	if len(v.Future) > 0 {
		fmt.Fprintf(&b, " next %s", strings.Join(v.Future, ","))
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
