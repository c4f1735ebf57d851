package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mzt-timers/mzt-go/pkg/chime"
	"github.com/mzt-timers/mzt-go/pkg/log"
	"github.com/mzt-timers/mzt-go/pkg/render"
	"github.com/mzt-timers/mzt-go/pkg/render/screen"
	"github.com/mzt-timers/mzt-go/pkg/run"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
	"github.com/mzt-timers/mzt-go/pkg/timer"
	"github.com/mzt-timers/mzt-go/pkg/watch"
)

// WatchOptions configures the watch command.
type WatchOptions struct {
	Interval time.Duration

	// TUI draws a full-screen countdown instead of text lines.
	TUI bool

	// Chime plays a tone on every segment change.
	Chime bool

	// LogPath, if set, records transition events to a CBOR log file.
	LogPath string

	// Verbose writes transition events to errOut.
	Verbose bool

	Render render.Config

	// Clock defaults to the wall clock.
	Clock timer.Clock

	// Screen is used instead of opening the terminal when TUI is set.
	Screen *screen.Screen
}

// RunWatch starts seq now and follows it until it ends or ctx is done.
// Text mode prints a line whenever the rendered state changes.
func RunWatch(ctx context.Context, seq *sequence.Sequence, opts WatchOptions, out, errOut io.Writer) error {
	clock := opts.Clock
	if clock == nil {
		clock = timer.SystemClock{}
	}

	r, err := run.FromSequence(seq, clock.Now())
	if err != nil {
		return err
	}

	var loggers []log.Logger
	if opts.LogPath != "" {
		fl, err := log.NewFileLogger(opts.LogPath)
		if err != nil {
			return err
		}
		defer fl.Close()
		loggers = append(loggers, fl)
	}
	if opts.Chime {
		player := chime.NewPlayer(true)
		if err := player.Init(); err != nil {
			fmt.Fprintf(errOut, "Warning: chime disabled: %v\n", err)
		} else {
			loggers = append(loggers, player)
		}
	}
	if opts.Verbose {
		handler := slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}

	w := &watch.Watcher{
		Clock:    clock,
		Interval: opts.Interval,
		Logger:   log.NewMultiLogger(loggers...),
		RunID:    r.ID,
		Source:   "cli",
	}

	if opts.TUI {
		sc := opts.Screen
		if sc == nil {
			if sc, err = screen.New(opts.Render); err != nil {
				return err
			}
			defer sc.Close()
		}
		return watchScreen(ctx, w, r, clock, sc, opts.Render)
	}

	var last string
	return w.Run(ctx, r.Timer(), func(s timer.State) {
		var b strings.Builder
		_ = render.WriteText(&b, opts.Render, render.Render(opts.Render, s))
		if line := b.String(); line != last {
			io.WriteString(out, line)
			last = line
		}
	})
}

// watchScreen draws every state and toggles the run on key presses. Once
// the run ends the final state stays on screen until the user quits.
func watchScreen(ctx context.Context, w *watch.Watcher, r *run.Run, clock timer.Clock, sc *screen.Screen, cfg render.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		quit bool
	)
	current := func() *timer.Timer {
		mu.Lock()
		defer mu.Unlock()
		return r.Timer()
	}

	go func() {
		for a := range sc.Events(ctx) {
			switch a {
			case screen.ActionQuit:
				mu.Lock()
				quit = true
				mu.Unlock()
				cancel()
			case screen.ActionToggle:
				mu.Lock()
				_ = r.Toggle(clock.Now())
				mu.Unlock()
			}
		}
	}()

	err := w.Follow(ctx, current, func(s timer.State) {
		sc.Draw(render.Render(cfg, s))
	})
	if err == nil {
		<-ctx.Done()
	}

	mu.Lock()
	defer mu.Unlock()
	if quit && (err == nil || errors.Is(err, context.Canceled)) {
		return nil
	}
	return err
}
