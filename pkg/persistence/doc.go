// Package persistence saves the history of an in-progress run so a
// countdown survives process restarts.
//
// Only history is stored (segments, start instant, pauses); the state of
// the countdown is recomputed from it on load.
package persistence
