package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/log"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/timer"
	"github.com/mzt-timers/mzt-go/pkg/watch"
)

// RunsAPI handles run endpoints.
type RunsAPI struct {
	store    *Store
	sessions *Sessions
	logger   *slog.Logger

	clock    timer.Clock
	interval time.Duration

	// Serialises pause transitions so read-modify-write stays consistent.
	mu sync.Mutex
}

// NewRunsAPI creates a new runs API handler. Stream events are logged to
// logger at debug level; a nil logger disables that.
func NewRunsAPI(store *Store, sessions *Sessions, logger *slog.Logger) *RunsAPI {
	return &RunsAPI{
		store:    store,
		sessions: sessions,
		logger:   logger,
		clock:    timer.SystemClock{},
		interval: watch.DefaultInterval,
	}
}

// HandleRunByID handles:
//
//	GET  /api/v1/runs/:id
//	GET  /api/v1/runs/:id/stream
//	POST /api/v1/runs/:id/toggle
//	POST /api/v1/runs/:id/pause
//	POST /api/v1/runs/:id/resume
func (a *RunsAPI) HandleRunByID(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/api/v1/runs/")
	id, action, _ := strings.Cut(path, "/")

	switch action {
	case "":
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		a.handleGetRun(w, req, id)
	case "stream":
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		a.handleStream(w, req, id)
	case "toggle", "pause", "resume":
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		a.handleTransition(w, req, id, action)
	default:
		writeJSONError(w, http.StatusNotFound, "Unknown run action", action)
	}
}

// load fetches a run whose sequence belongs to the request's session and
// writes a 404 otherwise.
func (a *RunsAPI) load(w http.ResponseWriter, req *http.Request, id string) (*run.Run, bool) {
	r, owner, err := a.store.GetRun(id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to get run", err.Error())
		return nil, false
	}

	session, _ := a.sessions.Lookup(req)
	if r == nil || owner != session {
		writeJSONError(w, http.StatusNotFound, "Run not found", id)
		return nil, false
	}
	return r, true
}

// handleGetRun handles GET /api/v1/runs/:id.
func (a *RunsAPI) handleGetRun(w http.ResponseWriter, req *http.Request, id string) {
	r, ok := a.load(w, req, id)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, r.Projection(a.clock.Now()))
}

// handleTransition handles POST /api/v1/runs/:id/{toggle,pause,resume}.
func (a *RunsAPI) handleTransition(w http.ResponseWriter, req *http.Request, id, action string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.load(w, req, id)
	if !ok {
		return
	}

	now := a.clock.Now()
	wasPaused := r.IsPaused()

	var err error
	switch action {
	case "toggle":
		err = r.Toggle(now)
	case "pause":
		err = r.Pause(now)
	case "resume":
		err = r.Unpause(now)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, run.ErrAlreadyPaused) || errors.Is(err, run.ErrNotPaused) || errors.Is(err, run.ErrEnded) {
			status = http.StatusConflict
		}
		writeJSONError(w, status, "Cannot "+action+" run", err.Error())
		return
	}

	switch {
	case !wasPaused && r.IsPaused():
		err = a.store.AddPause(id, now)
	case wasPaused && !r.IsPaused():
		err = a.store.ClosePause(id, now)
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to save pause", err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, r.Projection(now))
}

// sampleClock remembers the last instant it returned.
type sampleClock struct {
	timer.Clock
	last time.Time
}

func (c *sampleClock) Now() time.Time {
	c.last = c.Clock.Now()
	return c.last
}

// handleStream handles GET /api/v1/runs/:id/stream (Server-Sent Events).
// A "state" event carries the projection at each tick until the run ends,
// followed by a single "done" event. The run is re-read on every tick so
// pauses made through other requests show up.
func (a *RunsAPI) handleStream(w http.ResponseWriter, req *http.Request, id string) {
	latest, ok := a.load(w, req, id)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
		flusher.Flush()
	}

	clock := &sampleClock{Clock: a.clock}
	watcher := watch.Watcher{
		Clock:    clock,
		Interval: a.interval,
		RunID:    id,
		Source:   "web",
	}
	if a.logger != nil {
		watcher.Logger = log.NewSlogAdapter(a.logger)
	}

	current := func() *timer.Timer {
		if r, _, err := a.store.GetRun(id); err == nil && r != nil {
			latest = r
		}
		return latest.Timer()
	}

	err := watcher.Follow(req.Context(), current, func(timer.State) {
		send("state", latest.Projection(clock.last))
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	send("done", struct{}{})
}
