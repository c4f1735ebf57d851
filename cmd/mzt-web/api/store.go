package api

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// Store provides SQLite persistence for sequences, runs and pauses.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new store with the given database path.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would open its own database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sequences (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sequence_durations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence_id TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		timer TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		sequence_id TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		started_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pauses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_sequences_owner ON sequences(owner, created_at);
	CREATE INDEX IF NOT EXISTS idx_sequence_durations_sequence_id ON sequence_durations(sequence_id, position);
	CREATE INDEX IF NOT EXISTS idx_runs_sequence_id ON runs(sequence_id);
	CREATE INDEX IF NOT EXISTS idx_pauses_run_id ON pauses(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSequence stores seq and its durations.
func (s *Store) CreateSequence(seq *Sequence) error {
	if len(seq.Timers) != len(seq.DurationsMs) {
		return fmt.Errorf("sequence %s: %d timers but %d durations", seq.ID, len(seq.Timers), len(seq.DurationsMs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO sequences (id, owner, name, created_at)
		VALUES (?, ?, ?, ?)
	`, seq.ID, seq.Owner, seq.Name, seq.CreatedAt.UTC()); err != nil {
		return err
	}

	for i, t := range seq.Timers {
		if _, err := tx.Exec(`
			INSERT INTO sequence_durations (sequence_id, position, timer, duration_ms)
			VALUES (?, ?, ?, ?)
		`, seq.ID, i, t, seq.DurationsMs[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSequence retrieves a sequence by ID. It returns nil, nil when no such
// sequence exists.
func (s *Store) GetSequence(id string) (*Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getSequence(id)
}

func (s *Store) getSequence(id string) (*Sequence, error) {
	var seq Sequence
	err := s.db.QueryRow(`
		SELECT id, owner, name, created_at FROM sequences WHERE id = ?
	`, id).Scan(&seq.ID, &seq.Owner, &seq.Name, &seq.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadDurations(&seq); err != nil {
		return nil, err
	}
	return &seq, nil
}

func (s *Store) loadDurations(seq *Sequence) error {
	rows, err := s.db.Query(`
		SELECT timer, duration_ms FROM sequence_durations
		WHERE sequence_id = ? ORDER BY position
	`, seq.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	seq.Timers = []string{}
	seq.DurationsMs = []int64{}
	seq.TotalMs = 0
	for rows.Next() {
		var t string
		var ms int64
		if err := rows.Scan(&t, &ms); err != nil {
			return err
		}
		seq.Timers = append(seq.Timers, t)
		seq.DurationsMs = append(seq.DurationsMs, ms)
		seq.TotalMs += ms
	}
	return rows.Err()
}

// ListSequences returns one page of the owner's sequences, newest first,
// and the owner's total sequence count.
func (s *Store) ListSequences(owner string, limit, offset int) ([]Sequence, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = PageSize
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sequences WHERE owner = ?", owner).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`
		SELECT id, owner, name, created_at FROM sequences
		WHERE owner = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, owner, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	seqs := []Sequence{}
	for rows.Next() {
		var seq Sequence
		if err := rows.Scan(&seq.ID, &seq.Owner, &seq.Name, &seq.CreatedAt); err != nil {
			rows.Close()
			return nil, 0, err
		}
		seqs = append(seqs, seq)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, 0, err
	}

	for i := range seqs {
		if err := s.loadDurations(&seqs[i]); err != nil {
			return nil, 0, err
		}
	}
	return seqs, total, nil
}

// CountSequences returns the total number of sequences.
func (s *Store) CountSequences() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sequences").Scan(&count)
	return count, err
}

// CreateRun stores a started run of an existing sequence.
func (s *Store) CreateRun(r *run.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO runs (id, sequence_id, started_at) VALUES (?, ?, ?)
	`, r.ID, r.SequenceID, r.StartedAt.UTC()); err != nil {
		return err
	}

	for _, p := range r.Pauses {
		if err := insertPause(tx, r.ID, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertPause(tx *sql.Tx, runID string, p timer.Pause) error {
	var endedAt sql.NullTime
	if p.EndedAt != nil {
		endedAt = sql.NullTime{Time: p.EndedAt.UTC(), Valid: true}
	}
	_, err := tx.Exec(`
		INSERT INTO pauses (run_id, started_at, ended_at) VALUES (?, ?, ?)
	`, runID, p.StartedAt.UTC(), endedAt)
	return err
}

// GetRun retrieves a run with its segments and pause history, and the
// owner of its sequence. It returns nil, "", nil when no such run exists.
func (s *Store) GetRun(id string) (*run.Run, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getRun(id)
}

func (s *Store) getRun(id string) (*run.Run, string, error) {
	r := &run.Run{ID: id}
	var owner string
	err := s.db.QueryRow(`
		SELECT r.sequence_id, r.started_at, s.name, s.owner
		FROM runs r JOIN sequences s ON s.id = r.sequence_id
		WHERE r.id = ?
	`, id).Scan(&r.SequenceID, &r.StartedAt, &r.SequenceName, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	seq := Sequence{ID: r.SequenceID}
	if err := s.loadDurations(&seq); err != nil {
		return nil, "", err
	}
	r.Segments = duration.FromMillisecondsList(seq.DurationsMs)

	pauses, err := s.loadPauses(id)
	if err != nil {
		return nil, "", err
	}
	r.Pauses = pauses

	return r, owner, nil
}

func (s *Store) loadPauses(runID string) ([]timer.Pause, error) {
	rows, err := s.db.Query(`
		SELECT started_at, ended_at FROM pauses WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pauses []timer.Pause
	for rows.Next() {
		var startedAt time.Time
		var endedAt sql.NullTime
		if err := rows.Scan(&startedAt, &endedAt); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			pauses = append(pauses, timer.ClosedPause(startedAt, endedAt.Time))
		} else {
			pauses = append(pauses, timer.OpenPause(startedAt))
		}
	}
	return pauses, rows.Err()
}

// AddPause opens a pause at at.
func (s *Store) AddPause(runID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO pauses (run_id, started_at) VALUES (?, ?)
	`, runID, at.UTC())
	return err
}

// ClosePause ends the run's open pause at at.
func (s *Store) ClosePause(runID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE pauses SET ended_at = ?
		WHERE id = (SELECT MAX(id) FROM pauses WHERE run_id = ?) AND ended_at IS NULL
	`, at.UTC(), runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, run.ErrNotPaused)
	}
	return nil
}

// DeleteEndedRuns removes every run that has ended at now and returns how
// many were removed.
func (s *Store) DeleteEndedRuns(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id FROM runs")
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		r, _, err := s.getRun(id)
		if err != nil {
			return deleted, err
		}
		if r == nil || !r.IsEnded(now) {
			continue
		}
		if _, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// CountRuns returns the total number of runs.
func (s *Store) CountRuns() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
