package timer

import (
	"strings"
	"time"
)

// Input is the external form of a timer: instants are ISO-8601 strings and
// timers are duration strings or millisecond counts.
type Input struct {
	Timers    []any        `json:"timers" yaml:"timers"`
	StartedAt string       `json:"startedAt" yaml:"started_at"`
	Pauses    []PauseInput `json:"pauses,omitempty" yaml:"pauses,omitempty"`
}

// PauseInput is the external form of a Pause.
type PauseInput struct {
	StartedAt string  `json:"startedAt" yaml:"started_at"`
	EndedAt   *string `json:"endedAt,omitempty" yaml:"ended_at,omitempty"`
}

// Accepted instant layouts, tried in order. Layouts without a zone are UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseInstant parses an ISO-8601 instant.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	var firstErr error
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Config converts the input into a Config. An empty startedAt is a
// MissingFieldError; an unparseable one is a TimeError. Pause entries with
// unparseable instants are dropped.
func (in Input) Config() (Config, error) {
	if strings.TrimSpace(in.StartedAt) == "" {
		return Config{}, &MissingFieldError{Field: "startedAt"}
	}

	startedAt, err := ParseInstant(in.StartedAt)
	if err != nil {
		return Config{}, &TimeError{Field: "startedAt", Value: in.StartedAt, Cause: err}
	}

	pauses := make([]Pause, 0, len(in.Pauses))
	for _, p := range in.Pauses {
		pause, ok := p.pause()
		if !ok {
			continue
		}
		pauses = append(pauses, pause)
	}

	return Config{
		Segments:  in.Timers,
		StartedAt: &startedAt,
		Pauses:    pauses,
	}, nil
}

// Timer builds a Timer from the input.
func (in Input) Timer() (*Timer, error) {
	cfg, err := in.Config()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func (p PauseInput) pause() (Pause, bool) {
	start, err := ParseInstant(p.StartedAt)
	if err != nil {
		return Pause{}, false
	}
	if p.EndedAt == nil || strings.TrimSpace(*p.EndedAt) == "" {
		return OpenPause(start), true
	}
	end, err := ParseInstant(*p.EndedAt)
	if err != nil {
		return Pause{}, false
	}
	return ClosedPause(start, end), true
}

// InputFromTimer renders t in external form. Segments are milliseconds.
func InputFromTimer(t *Timer) Input {
	in := Input{
		Timers:    make([]any, 0, len(t.segments)),
		StartedAt: t.startedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, d := range t.segments {
		in.Timers = append(in.Timers, d.Milliseconds())
	}
	for _, p := range t.pauses {
		pi := PauseInput{StartedAt: p.StartedAt.UTC().Format(time.RFC3339Nano)}
		if p.EndedAt != nil {
			end := p.EndedAt.UTC().Format(time.RFC3339Nano)
			pi.EndedAt = &end
		}
		in.Pauses = append(in.Pauses, pi)
	}
	return in
}

// ParseTimerList splits a comma-separated list of durations such as
// "10:00, 25:00,10:00". Blank entries are skipped; entries are not parsed.
func ParseTimerList(s string) []any {
	var out []any
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
