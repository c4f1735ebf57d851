// Package sequence loads named timer sequences from YAML files.
//
// A sequence file lists the segments of a countdown and, optionally, the
// start instant and pause history of a run so its state can be replayed:
//
//	version: "1.0"
//	name: pomodoro
//	timers: ["25:00", "5:00", "25:00", "15:00"]
//	started_at: 2025-07-01T10:00:00Z
//	pauses:
//	  - started_at: 2025-07-01T10:05:00Z
//	    ended_at: 2025-07-01T10:07:00Z
package sequence

import (
	"fmt"
	"strings"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// MaxTimers is the largest number of segments a sequence may hold.
const MaxTimers = 100

// Sequence is a named, ordered list of duration strings.
type Sequence struct {
	Version     string   `yaml:"version,omitempty" json:"version,omitempty"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Timers      []string `yaml:"timers" json:"timers"`

	// StartedAt and Pauses describe a run to replay. Both are optional.
	StartedAt string             `yaml:"started_at,omitempty" json:"startedAt,omitempty"`
	Pauses    []timer.PauseInput `yaml:"pauses,omitempty" json:"pauses,omitempty"`
}

// Durations parses every timer. Unlike timer.New in lenient mode, an
// invalid entry is an error.
func (s *Sequence) Durations() ([]time.Duration, error) {
	out := make([]time.Duration, 0, len(s.Timers))
	for i, raw := range s.Timers {
		d, err := duration.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("timer %d: %w", i+1, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// TotalDuration returns the sum of all parseable timers.
func (s *Sequence) TotalDuration() time.Duration {
	var total time.Duration
	for _, raw := range s.Timers {
		if d, err := duration.Parse(raw); err == nil {
			total += d
		}
	}
	return total
}

// Input returns the timer input for the sequence. When the sequence has no
// started_at, now is used.
func (s *Sequence) Input(now time.Time) timer.Input {
	in := timer.Input{
		Timers:    make([]any, len(s.Timers)),
		StartedAt: s.StartedAt,
		Pauses:    s.Pauses,
	}
	for i, t := range s.Timers {
		in.Timers[i] = t
	}
	if strings.TrimSpace(in.StartedAt) == "" {
		in.StartedAt = now.UTC().Format(time.RFC3339Nano)
	}
	return in
}

// TimerConfig returns a strict timer.Config for the sequence.
func (s *Sequence) TimerConfig(now time.Time) (timer.Config, error) {
	cfg, err := s.Input(now).Config()
	if err != nil {
		return timer.Config{}, err
	}
	cfg.Strict = true
	return cfg, nil
}

// Timer builds the Timer for the sequence.
func (s *Sequence) Timer(now time.Time) (*timer.Timer, error) {
	cfg, err := s.TimerConfig(now)
	if err != nil {
		return nil, err
	}
	return timer.New(cfg)
}

// FromList builds an unnamed-file sequence from a comma-separated timer
// list such as "25:00, 5:00".
func FromList(name, list string) *Sequence {
	s := &Sequence{Name: name}
	for _, v := range timer.ParseTimerList(list) {
		s.Timers = append(s.Timers, v.(string))
	}
	return s
}

// Validate checks the name, the timer count, each timer and the version.
func (s *Sequence) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &LoadError{Message: "sequence name is required"}
	}
	if len(s.Timers) == 0 {
		return &LoadError{Message: "sequence must have at least one timer"}
	}
	if len(s.Timers) > MaxTimers {
		return &LoadError{Message: fmt.Sprintf("sequence has %d timers, at most %d allowed", len(s.Timers), MaxTimers)}
	}
	if _, err := s.Durations(); err != nil {
		return &LoadError{Message: "invalid timer", Cause: err}
	}
	return checkVersion(s.Version)
}
