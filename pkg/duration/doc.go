// Package duration parses and formats the compact timer durations used by
// timer sequences.
//
// # Text Format
//
// Durations are written as colon-separated numbers, read right to left as
// seconds, minutes and hours:
//
//	"SS"        seconds only        "10"       -> 10s
//	"MM:SS"     minutes and seconds "10:00"    -> 10m
//	"H:MM:SS"   hours, minutes, s.  "1:30:00"  -> 1h30m
//
// Each field is parsed as a plain number. There is no width requirement and
// no range validation: "90:00" is accepted and means ninety minutes.
//
// # Resolution
//
// Timer arithmetic works at millisecond resolution. Values crossing a
// process boundary (JSON, CBOR, SQLite) are integer millisecond counts; use
// Milliseconds and FromMilliseconds to convert.
package duration
