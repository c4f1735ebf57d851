package timer

import "time"

// Clock supplies the current instant to the iteration protocol.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// Compile-time interface satisfaction checks.
var (
	_ Clock = SystemClock{}
	_ Clock = ClockFunc(nil)
)
