package api

import (
	"errors"
	"testing"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

var t0 = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestSequence(t *testing.T, store *Store, id, owner string, created time.Time, ms ...int64) *Sequence {
	t.Helper()
	seq := &Sequence{ID: id, Owner: owner, Name: "seq " + id, CreatedAt: created}
	for _, v := range ms {
		seq.Timers = append(seq.Timers, time.Duration(v*int64(time.Millisecond)).String())
		seq.DurationsMs = append(seq.DurationsMs, v)
	}
	if err := store.CreateSequence(seq); err != nil {
		t.Fatalf("Failed to create sequence: %v", err)
	}
	return seq
}

func TestStoreCreateAndGetSequence(t *testing.T) {
	store := newTestStore(t)
	createTestSequence(t, store, "s1", "alice", t0, 60000, 30000)

	got, err := store.GetSequence("s1")
	if err != nil {
		t.Fatalf("Failed to get sequence: %v", err)
	}
	if got == nil {
		t.Fatal("Expected sequence, got nil")
	}
	if got.Owner != "alice" || got.Name != "seq s1" {
		t.Errorf("Unexpected sequence: %+v", got)
	}
	if len(got.DurationsMs) != 2 || got.DurationsMs[0] != 60000 || got.DurationsMs[1] != 30000 {
		t.Errorf("Expected durations [60000 30000], got %v", got.DurationsMs)
	}
	if got.TotalMs != 90000 {
		t.Errorf("Expected total 90000, got %d", got.TotalMs)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("Expected created_at %v, got %v", t0, got.CreatedAt)
	}
}

func TestStoreGetSequenceNotFound(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetSequence("missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
}

func TestStoreCreateSequenceMismatch(t *testing.T) {
	store := newTestStore(t)
	err := store.CreateSequence(&Sequence{ID: "x", Owner: "a", Name: "x", Timers: []string{"1:00"}})
	if err == nil {
		t.Fatal("Expected error for missing durations")
	}
}

func TestStoreListSequencesPaginatesPerOwner(t *testing.T) {
	store := newTestStore(t)
	for i := range 30 {
		createTestSequence(t, store, string(rune('A'+i)), "alice", t0.Add(time.Duration(i)*time.Minute), 1000)
	}
	createTestSequence(t, store, "bob-1", "bob", t0, 1000)

	page1, total, err := store.ListSequences("alice", PageSize, 0)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if total != 30 {
		t.Errorf("Expected total 30, got %d", total)
	}
	if len(page1) != PageSize {
		t.Fatalf("Expected %d sequences, got %d", PageSize, len(page1))
	}
	if page1[0].ID != string(rune('A'+29)) {
		t.Errorf("Expected newest first, got %s", page1[0].ID)
	}
	if len(page1[0].DurationsMs) != 1 {
		t.Errorf("Expected durations loaded, got %v", page1[0].DurationsMs)
	}

	page2, _, err := store.ListSequences("alice", PageSize, PageSize)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("Expected 5 sequences on page 2, got %d", len(page2))
	}

	none, total, err := store.ListSequences("carol", PageSize, 0)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Errorf("Expected no sequences for carol, got %d/%d", len(none), total)
	}
}

func TestStoreRunRoundTrip(t *testing.T) {
	store := newTestStore(t)
	createTestSequence(t, store, "s1", "alice", t0, 60000, 30000)

	r := run.New("s1", "seq s1", []time.Duration{time.Minute, 30 * time.Second}, t0)
	if err := store.CreateRun(r); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	if err := store.AddPause(r.ID, t0.Add(10*time.Second)); err != nil {
		t.Fatalf("Failed to add pause: %v", err)
	}
	if err := store.ClosePause(r.ID, t0.Add(20*time.Second)); err != nil {
		t.Fatalf("Failed to close pause: %v", err)
	}
	if err := store.AddPause(r.ID, t0.Add(30*time.Second)); err != nil {
		t.Fatalf("Failed to add pause: %v", err)
	}

	got, owner, err := store.GetRun(r.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got == nil {
		t.Fatal("Expected run, got nil")
	}
	if owner != "alice" {
		t.Errorf("Expected owner alice, got %q", owner)
	}
	if got.SequenceName != "seq s1" || !got.StartedAt.Equal(t0) {
		t.Errorf("Unexpected run: %+v", got)
	}
	if len(got.Segments) != 2 || got.Segments[1] != 30*time.Second {
		t.Errorf("Unexpected segments: %v", got.Segments)
	}
	if len(got.Pauses) != 2 {
		t.Fatalf("Expected 2 pauses, got %d", len(got.Pauses))
	}
	if got.Pauses[0].Duration() != 10*time.Second {
		t.Errorf("Expected closed pause of 10s, got %v", got.Pauses[0].Duration())
	}
	if !got.IsPaused() {
		t.Error("Expected run to be paused")
	}
}

func TestStoreClosePauseWithoutOpenPause(t *testing.T) {
	store := newTestStore(t)
	createTestSequence(t, store, "s1", "alice", t0, 1000)
	r := run.New("s1", "seq s1", []time.Duration{time.Second}, t0)
	if err := store.CreateRun(r); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	err := store.ClosePause(r.ID, t0)
	if !errors.Is(err, run.ErrNotPaused) {
		t.Errorf("Expected ErrNotPaused, got %v", err)
	}
}

func TestStoreGetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	got, owner, err := store.GetRun("missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil || owner != "" {
		t.Errorf("Expected nil run, got %+v (%q)", got, owner)
	}
}

func TestStoreDeleteEndedRuns(t *testing.T) {
	store := newTestStore(t)
	createTestSequence(t, store, "s1", "alice", t0, 60000)

	ended := run.New("s1", "seq s1", []time.Duration{time.Minute}, t0)
	running := run.New("s1", "seq s1", []time.Duration{time.Minute}, t0.Add(time.Hour))
	paused := run.New("s1", "seq s1", []time.Duration{time.Minute}, t0)
	paused.Pauses = append(paused.Pauses, timer.OpenPause(t0.Add(30*time.Second)))

	for _, r := range []*run.Run{ended, running, paused} {
		if err := store.CreateRun(r); err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	}

	n, err := store.DeleteEndedRuns(t0.Add(time.Hour + 30*time.Second))
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deleted run, got %d", n)
	}

	count, err := store.CountRuns()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 remaining runs, got %d", count)
	}

	if got, _, _ := store.GetRun(ended.ID); got != nil {
		t.Error("Expected ended run to be deleted")
	}
}

func TestStoreCascadeDeletesPauses(t *testing.T) {
	store := newTestStore(t)
	createTestSequence(t, store, "s1", "alice", t0, 1000)
	r := run.New("s1", "seq s1", []time.Duration{time.Second}, t0)
	r.Pauses = append(r.Pauses, timer.ClosedPause(t0, t0.Add(time.Second)))
	if err := store.CreateRun(r); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	if _, err := store.DeleteEndedRuns(t0.Add(time.Hour)); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	var pauses int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM pauses").Scan(&pauses); err != nil {
		t.Fatalf("Failed to count pauses: %v", err)
	}
	if pauses != 0 {
		t.Errorf("Expected pauses to cascade, got %d", pauses)
	}
}
