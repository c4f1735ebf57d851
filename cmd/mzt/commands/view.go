package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/log"
)

// ParseKindFlag parses an event kind name, case-insensitively.
func ParseKindFlag(s string) (log.EventKind, error) {
	k, ok := log.ParseEventKind(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid event kind %q (valid: started, paused, resumed, segment_advanced, ended, observed)", s)
	}
	return k, nil
}

// RunView writes the events of a log file that match filter to w.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.Events() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes one line per event:
// timestamp [run:id] KIND segment remaining source
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
	fmt.Fprintf(w, "%s [run:%s] %-16s", ts, shortenRunID(event.RunID), event.Kind)

	if event.Kind != log.EventEnded {
		fmt.Fprintf(w, " segment %d remaining %s", event.Segment+1, duration.Format(event.Remaining))
	} else {
		fmt.Fprintf(w, " segments %d", event.Segment)
	}
	if event.Source != "" {
		fmt.Fprintf(w, " (%s)", event.Source)
	}
	fmt.Fprintln(w)
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
