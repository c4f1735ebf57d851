// Package commands implements the mzt CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mzt-timers/mzt-go/pkg/duration"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
)

// LoadSequence reads arg as a sequence file when such a file exists, and
// as a comma-separated timer list such as "25:00,5:00" otherwise.
func LoadSequence(arg string) (*sequence.Sequence, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return sequence.Load(arg)
	}

	s := sequence.FromList("timers", arg)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// RunParse prints each duration in milliseconds next to its clock form.
// It stops at the first invalid input.
func RunParse(args []string, w io.Writer) error {
	for _, arg := range args {
		d, err := duration.Parse(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", arg, duration.Milliseconds(d), duration.Format(d))
	}
	return nil
}
