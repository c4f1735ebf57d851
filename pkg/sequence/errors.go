package sequence

import (
	"errors"
	"strconv"
)

// ErrInvalid is matched by every LoadError.
var ErrInvalid = errors.New("invalid sequence")

// LoadError describes a sequence that failed to load or validate.
type LoadError struct {
	// File is the path that failed to load, if any.
	File string

	// Line is the 1-based line of the offending entry (0 if unknown).
	Line int

	Message string

	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	switch {
	case e.File != "" && e.Line > 0:
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + msg
	case e.File != "":
		return e.File + ": " + msg
	case e.Line > 0:
		return "line " + strconv.Itoa(e.Line) + ": " + msg
	default:
		return msg
	}
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalid.
func (e *LoadError) Is(target error) bool {
	return target == ErrInvalid
}
