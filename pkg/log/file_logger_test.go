package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tlog")

	for _, id := range []string{"first", "second"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: t0, RunID: id, Kind: EventObserved})
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	events := readAll(t, path, Filter{})
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].RunID != "first" || events[1].RunID != "second" {
		t.Errorf("events out of order: %q, %q", events[0].RunID, events[1].RunID)
	}
}

func TestFileLoggerIgnoresLogAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Close()
	logger.Log(Event{Timestamp: t0, RunID: "late"})

	if err := logger.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
	if n := len(readAll(t, path, Filter{})); n != 0 {
		t.Errorf("got %d events after close, want 0", n)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				logger.Log(Event{Timestamp: t0.Add(time.Duration(i) * time.Second), RunID: "run", Segment: g})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if n := len(readAll(t, path, Filter{})); n != 200 {
		t.Errorf("got %d events, want 200", n)
	}
	if logger.Errors() != 0 {
		t.Errorf("Errors() = %d, want 0", logger.Errors())
	}
}

func TestNewFileLoggerBadPath(t *testing.T) {
	if _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "run.tlog")); err == nil {
		t.Error("expected error for missing directory")
	}
}
