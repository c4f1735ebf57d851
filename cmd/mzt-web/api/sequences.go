package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// SequencesAPI handles sequence endpoints. Sequences are visible only to
// the session that created them.
type SequencesAPI struct {
	store    *Store
	sessions *Sessions
	clock    timer.Clock
}

// NewSequencesAPI creates a new sequences API handler.
func NewSequencesAPI(store *Store, sessions *Sessions) *SequencesAPI {
	return &SequencesAPI{
		store:    store,
		sessions: sessions,
		clock:    timer.SystemClock{},
	}
}

// HandleSequences handles GET and POST /api/v1/sequences.
func (a *SequencesAPI) HandleSequences(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		a.handleList(w, req)
	case http.MethodPost:
		a.handleCreate(w, req)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSequenceByID handles GET /api/v1/sequences/:id and
// POST /api/v1/sequences/:id/runs.
func (a *SequencesAPI) HandleSequenceByID(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/api/v1/sequences/")

	if id, ok := strings.CutSuffix(path, "/runs"); ok {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		a.handleStartRun(w, req, id)
		return
	}

	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	seq, ok := a.lookup(w, req, path)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, seq)
}

// handleList handles GET /api/v1/sequences?page=N.
func (a *SequencesAPI) handleList(w http.ResponseWriter, req *http.Request) {
	page := 1
	if p := req.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "Invalid page", p)
			return
		}
		page = n
	}

	owner := a.sessions.Owner(w, req)
	seqs, total, err := a.store.ListSequences(owner, PageSize, (page-1)*PageSize)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to list sequences", err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, SequenceListResponse{
		Sequences: seqs,
		Page:      page,
		PageSize:  PageSize,
		Total:     total,
	})
}

// handleCreate handles POST /api/v1/sequences.
func (a *SequencesAPI) handleCreate(w http.ResponseWriter, req *http.Request) {
	var body SequenceRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	def := &sequence.Sequence{
		Name:   strings.TrimSpace(body.Name),
		Timers: body.Timers,
	}
	if err := def.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid sequence", err.Error())
		return
	}
	ds, err := def.Durations()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid sequence", err.Error())
		return
	}

	seq := &Sequence{
		ID:          uuid.New().String(),
		Owner:       a.sessions.Owner(w, req),
		Name:        def.Name,
		Timers:      def.Timers,
		DurationsMs: duration.MillisecondsList(ds),
		CreatedAt:   a.clock.Now().UTC(),
	}
	for _, ms := range seq.DurationsMs {
		seq.TotalMs += ms
	}

	if err := a.store.CreateSequence(seq); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to create sequence", err.Error())
		return
	}

	writeJSONResponse(w, http.StatusCreated, seq)
}

// handleStartRun handles POST /api/v1/sequences/:id/runs.
func (a *SequencesAPI) handleStartRun(w http.ResponseWriter, req *http.Request, id string) {
	seq, ok := a.lookup(w, req, id)
	if !ok {
		return
	}

	now := a.clock.Now()
	r := run.New(seq.ID, seq.Name, duration.FromMillisecondsList(seq.DurationsMs), now.UTC())
	if err := a.store.CreateRun(r); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to create run", err.Error())
		return
	}

	writeJSONResponse(w, http.StatusCreated, r.Projection(now))
}

// lookup loads a sequence owned by the request's session and writes a 404
// otherwise.
func (a *SequencesAPI) lookup(w http.ResponseWriter, req *http.Request, id string) (*Sequence, bool) {
	seq, err := a.store.GetSequence(id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to get sequence", err.Error())
		return nil, false
	}

	owner, _ := a.sessions.Lookup(req)
	if seq == nil || seq.Owner != owner {
		writeJSONError(w, http.StatusNotFound, "Sequence not found", id)
		return nil, false
	}
	return seq, true
}
