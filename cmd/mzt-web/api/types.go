// Package api provides the HTTP API handlers and SQLite store of mzt-web.
package api

import "time"

// PageSize is the number of sequences per list page.
const PageSize = 25

// SequenceRequest is the request body for POST /api/v1/sequences.
type SequenceRequest struct {
	Name   string   `json:"name"`
	Timers []string `json:"timers"`
}

// Sequence is a stored sequence.
type Sequence struct {
	ID    string `json:"id"`
	Owner string `json:"-"`
	Name  string `json:"name"`

	// Timers holds the durations as entered.
	Timers []string `json:"timers"`

	// DurationsMs holds the parsed durations.
	DurationsMs []int64 `json:"durationsMs"`

	TotalMs   int64     `json:"totalMs"`
	CreatedAt time.Time `json:"createdAt"`
}

// SequenceListResponse is the response for GET /api/v1/sequences.
type SequenceListResponse struct {
	Sequences []Sequence `json:"sequences"`
	Page      int        `json:"page"`
	PageSize  int        `json:"pageSize"`
	Total     int        `json:"total"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
