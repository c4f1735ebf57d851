package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.String("event", event.Kind.String()),
		slog.Int("segment", event.Segment),
		slog.Duration("remaining", event.Remaining),
	}

	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	if s := event.State; s != nil {
		attrs = append(attrs, slog.String("state", s.Kind))
		if s.TotalRemainingMs != 0 {
			attrs = append(attrs, slog.Int64("total_remaining_ms", s.TotalRemainingMs))
		}
		if s.EndedAt != nil {
			attrs = append(attrs, slog.Time("ended_at", *s.EndedAt))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "timer", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
