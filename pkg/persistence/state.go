package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// RunState is the persisted form of a run.
type RunState struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	RunID        string `json:"run_id"`
	SequenceID   string `json:"sequence_id,omitempty"`
	SequenceName string `json:"sequence_name,omitempty"`

	// Timer holds segments as milliseconds and instants as RFC 3339.
	Timer timer.Input `json:"timer"`
}

// Snapshot captures the history of r.
func Snapshot(r *run.Run) *RunState {
	return &RunState{
		RunID:        r.ID,
		SequenceID:   r.SequenceID,
		SequenceName: r.SequenceName,
		Timer:        timer.InputFromTimer(r.Timer()),
	}
}

// Run rebuilds the run. Every stored segment must be valid.
func (s *RunState) Run() (*run.Run, error) {
	cfg, err := s.Timer.Config()
	if err != nil {
		return nil, err
	}
	cfg.Strict = true

	t, err := timer.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", s.RunID, err)
	}

	return &run.Run{
		ID:           s.RunID,
		SequenceID:   s.SequenceID,
		SequenceName: s.SequenceName,
		Segments:     t.Segments(),
		StartedAt:    t.StartedAt(),
		Pauses:       t.Pauses(),
	}, nil
}

// RunStateStore keeps a RunState in a JSON file.
type RunStateStore struct {
	mu   sync.Mutex
	path string
}

// NewRunStateStore returns a store backed by path.
func NewRunStateStore(path string) *RunStateStore {
	return &RunStateStore{path: path}
}

// Path returns the backing file path.
func (s *RunStateStore) Path() string {
	return s.path
}

// Save writes state to disk, creating parent directories as needed.
func (s *RunStateStore) Save(state *RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// SaveRun snapshots r and saves it.
func (s *RunStateStore) SaveRun(r *run.Run) error {
	return s.Save(Snapshot(r))
}

// Load reads the state from disk. It returns nil, nil when no state has
// been saved.
func (s *RunStateStore) Load() (*RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &RunState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("state file %s has version %d, newest supported is %d", s.path, state.Version, StateVersion)
	}

	// encoding/json decodes numbers into float64; keep millisecond segments
	// exact.
	for i, v := range state.Timer.Timers {
		if f, ok := v.(float64); ok {
			state.Timer.Timers[i] = duration.FromMilliseconds(int64(f))
		}
	}
	return state, nil
}

// Clear removes the state file. A missing file is not an error.
func (s *RunStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
