// Package interactive provides the readline shell of "mzt interactive".
package interactive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mzt-timers/mzt-go/pkg/persistence"
	"github.com/mzt-timers/mzt-go/pkg/render"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// Config configures a Session.
type Config struct {
	Sequence *sequence.Sequence

	// Store keeps the run across restarts. Nil keeps it in memory only.
	Store *persistence.RunStateStore

	Clock  timer.Clock
	Render render.Config

	// Out receives command output until Run replaces it with the readline
	// writer. Defaults to os.Stdout.
	Out io.Writer
}

// Session runs one sequence under user control.
type Session struct {
	seq    *sequence.Sequence
	store  *persistence.RunStateStore
	clock  timer.Clock
	render render.Config
	out    io.Writer

	run *run.Run
}

// New creates a session. A run saved in the store for the same sequence
// is resumed.
func New(cfg Config) (*Session, error) {
	s := &Session{
		seq:    cfg.Sequence,
		store:  cfg.Store,
		clock:  cfg.Clock,
		render: cfg.Render,
		out:    cfg.Out,
	}
	if s.clock == nil {
		s.clock = timer.SystemClock{}
	}
	if s.out == nil {
		s.out = os.Stdout
	}

	if s.store != nil {
		state, err := s.store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
		if state != nil && state.SequenceName == s.seq.Name {
			r, err := state.Run()
			if err != nil {
				return nil, fmt.Errorf("failed to restore run: %w", err)
			}
			s.run = r
		}
	}
	return s, nil
}

// Resumed reports whether a saved run was restored.
func (s *Session) Resumed() bool {
	return s.run != nil
}

// Run starts the interactive command loop. It returns when the user quits,
// input ends or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mzt> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	s.printHelp()
	if s.run != nil {
		fmt.Fprintf(s.out, "Resumed run %s\n", s.run.ID)
		s.printState()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if s.Exec(line) {
			return nil
		}
	}
}

// Exec runs one command line. It returns true when the session should end.
func (s *Session) Exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case "help", "?":
		s.printHelp()

	case "start":
		s.cmdStart()

	case "pause", "p":
		s.transition("pause", (*run.Run).Pause)

	case "resume", "r":
		s.transition("resume", (*run.Run).Unpause)

	case "toggle", "t":
		s.transition("toggle", (*run.Run).Toggle)

	case "state", "s":
		if s.requireRun() {
			s.printState()
		}

	case "json":
		if s.requireRun() {
			s.printJSON()
		}

	case "reset":
		s.cmdReset()

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", parts[0])
	}
	return false
}

func (s *Session) printHelp() {
	fmt.Fprintf(s.out, `Sequence %q: %s

Commands:
  start    Start the sequence
  pause    Pause the running sequence
  resume   Resume a paused sequence
  toggle   Pause or resume
  state    Show the current state
  json     Show the current state as JSON
  reset    Discard the run
  help     Show this help
  quit     Exit
`, s.seq.Name, strings.Join(s.seq.Timers, ", "))
}

func (s *Session) requireRun() bool {
	if s.run == nil {
		fmt.Fprintln(s.out, "No run started (use 'start')")
		return false
	}
	return true
}

func (s *Session) cmdStart() {
	now := s.clock.Now()
	if s.run != nil && !s.run.IsEnded(now) {
		fmt.Fprintln(s.out, "Run already in progress (use 'reset' to discard it)")
		return
	}

	r, err := run.FromSequence(s.seq, now)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	// A sequence file's own history is only replayed once.
	if s.run != nil {
		r = run.New("", s.seq.Name, r.Segments, now)
	}
	s.run = r
	s.save()
	fmt.Fprintf(s.out, "Started run %s\n", r.ID)
	s.printState()
}

func (s *Session) transition(name string, fn func(*run.Run, time.Time) error) {
	if !s.requireRun() {
		return
	}
	if err := fn(s.run, s.clock.Now()); err != nil {
		switch {
		case errors.Is(err, run.ErrAlreadyPaused):
			fmt.Fprintln(s.out, "Already paused")
		case errors.Is(err, run.ErrNotPaused):
			fmt.Fprintln(s.out, "Not paused")
		case errors.Is(err, run.ErrEnded):
			fmt.Fprintln(s.out, "Run has ended")
		default:
			fmt.Fprintf(s.out, "Cannot %s: %v\n", name, err)
		}
		return
	}
	s.save()
	s.printState()
}

func (s *Session) cmdReset() {
	s.run = nil
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
	}
	fmt.Fprintln(s.out, "Run discarded")
}

func (s *Session) save() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRun(s.run); err != nil {
		fmt.Fprintf(s.out, "Warning: failed to save state: %v\n", err)
	}
}

func (s *Session) printState() {
	now := s.clock.Now()
	p := s.run.Projection(now)
	_ = render.WriteText(s.out, s.render, render.Render(s.render, p.State))
	if p.EndsAt != nil && p.EndsAt.After(now) {
		fmt.Fprintf(s.out, "ends at %s\n", p.EndsAt.Local().Format(time.TimeOnly))
	}
}

func (s *Session) printJSON() {
	data, err := json.MarshalIndent(s.run.Projection(s.clock.Now()), "", "  ")
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}
