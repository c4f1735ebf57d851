package timer

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	ErrMissingField   = errors.New("missing field")
	ErrInvalidSegment = errors.New("invalid segment")
	ErrInvalidTime    = errors.New("invalid time")
)

// MissingFieldError is returned by New when a mandatory input is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing %q", e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// SegmentError is returned in strict mode for the first segment entry that
// is neither a finite number nor a parseable duration string.
type SegmentError struct {
	Index int
	Value any
	Cause error
}

func (e *SegmentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("segment %d (%v): %v", e.Index, e.Value, e.Cause)
	}
	return fmt.Sprintf("segment %d: unsupported value %v (%T)", e.Index, e.Value, e.Value)
}

func (e *SegmentError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidSegment.
func (e *SegmentError) Is(target error) bool {
	return target == ErrInvalidSegment
}

// TimeError is returned when an instant in external input can't be parsed.
type TimeError struct {
	Field string
	Value string
	Cause error
}

func (e *TimeError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Cause)
}

func (e *TimeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidTime.
func (e *TimeError) Is(target error) bool {
	return target == ErrInvalidTime
}
