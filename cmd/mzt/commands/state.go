package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/render"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
)

// StateOptions configures the state command.
type StateOptions struct {
	// At is the instant to evaluate. A sequence without started_at starts
	// at At.
	At time.Time

	// JSON prints the projection instead of text.
	JSON bool

	Render render.Config
}

// RunState prints the state of seq at opts.At.
func RunState(seq *sequence.Sequence, opts StateOptions, w io.Writer) error {
	r, err := run.FromSequence(seq, opts.At)
	if err != nil {
		return err
	}
	p := r.Projection(opts.At)

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	if err := render.WriteText(w, opts.Render, render.Render(opts.Render, p.State)); err != nil {
		return err
	}
	if p.EndsAt != nil {
		label := "ends "
		if p.EndsAt.Before(opts.At) || p.EndsAt.Equal(opts.At) {
			label = "ended"
		}
		fmt.Fprintf(w, "%s   %s\n", label, p.EndsAt.Format(time.RFC3339))
	}
	return nil
}
