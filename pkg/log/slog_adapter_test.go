package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/timer"
)

func TestSlogAdapterLogsEvent(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tm := timer.FromDurations(t0, []time.Duration{time.Minute, time.Minute})
	at := t0.Add(90 * time.Second)
	event := NewEvent(at, "run-7", EventSegmentAdvanced, tm.State(at))
	event.Source = "web"

	NewSlogAdapter(slogger).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}

	want := map[string]any{
		"msg":                "timer",
		"level":              "DEBUG",
		"run_id":             "run-7",
		"event":              "SEGMENT_ADVANCED",
		"segment":            float64(1),
		"state":              "running",
		"source":             "web",
		"total_remaining_ms": float64(30000),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewSlogAdapter(slogger).Log(Event{Timestamp: t0, RunID: "quiet"})

	if buf.Len() != 0 {
		t.Errorf("expected no output at Info level, got %q", buf.String())
	}
}
