package duration

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{9 * time.Second, "00:09"},
		{10 * time.Minute, "10:00"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{10*time.Hour + 10*time.Minute + 10*time.Second, "10:10:10"},
		{1499 * time.Millisecond, "00:01"},
		{1500 * time.Millisecond, "00:02"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatList(t *testing.T) {
	got := FormatList([]time.Duration{time.Minute, time.Hour})
	if len(got) != 2 || got[0] != "01:00" || got[1] != "01:00:00" {
		t.Errorf("FormatList() = %v", got)
	}
}
