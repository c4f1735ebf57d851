package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat is matched by every FormatError.
var ErrInvalidFormat = errors.New("invalid duration format")

// ErrOutOfRange is the cause of a FormatError for a value that does not
// fit in a time.Duration.
var ErrOutOfRange = errors.New("duration out of range")

// Field scales, in the order fields are read (right to left).
const (
	Second = time.Second
	Minute = 60 * Second
	Hour   = 60 * Minute
)

// MaxFields is the maximum number of colon-separated fields.
const MaxFields = 3

// MaxMilliseconds is the largest millisecond count, positive or negative,
// that a time.Duration can hold.
const MaxMilliseconds = math.MaxInt64 / int64(time.Millisecond)

// FormatError is returned when a duration string cannot be parsed.
type FormatError struct {
	// Input is the string that failed to parse.
	Input string

	// Cause is the number parsing error, if a field was not numeric.
	Cause error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("can't parse %q: %v", e.Input, e.Cause)
	}
	return fmt.Sprintf("can't parse %q", e.Input)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// Parse converts "H:MM:SS", "MM:SS" or "SS" into a duration.
func Parse(input string) (time.Duration, error) {
	fields := strings.Split(input, ":")
	if len(fields) > MaxFields {
		return 0, &FormatError{Input: input}
	}

	scales := [MaxFields]time.Duration{Second, Minute, Hour}

	var total float64
	for i := range fields {
		field := strings.TrimSpace(fields[len(fields)-1-i])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, &FormatError{Input: input, Cause: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &FormatError{Input: input}
		}
		total += v * float64(scales[i])
	}

	// Round to the millisecond so "0.0005" style inputs don't leak
	// sub-millisecond noise into segment arithmetic.
	ms := math.Round(total / float64(time.Millisecond))
	if math.Abs(ms) > float64(MaxMilliseconds) {
		return 0, &FormatError{Input: input, Cause: ErrOutOfRange}
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) time.Duration {
	d, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return d
}

// Milliseconds returns d as an integer millisecond count.
func Milliseconds(d time.Duration) int64 {
	return d.Milliseconds()
}

// FromMilliseconds converts a millisecond count to a duration.
func FromMilliseconds(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// FromMillisecondsChecked is like FromMilliseconds but fails with
// ErrOutOfRange instead of overflowing.
func FromMillisecondsChecked(ms int64) (time.Duration, error) {
	if ms > MaxMilliseconds || ms < -MaxMilliseconds {
		return 0, ErrOutOfRange
	}
	return FromMilliseconds(ms), nil
}

// MillisecondsList converts a list of durations to millisecond counts.
// A nil input yields an empty, non-nil slice so JSON renders [] rather than null.
func MillisecondsList(ds []time.Duration) []int64 {
	out := make([]int64, len(ds))
	for i, d := range ds {
		out[i] = d.Milliseconds()
	}
	return out
}

// FromMillisecondsList is the inverse of MillisecondsList.
func FromMillisecondsList(ms []int64) []time.Duration {
	out := make([]time.Duration, len(ms))
	for i, v := range ms {
		out[i] = FromMilliseconds(v)
	}
	return out
}
