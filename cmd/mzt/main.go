// Command mzt runs and inspects timer sequences from the terminal.
//
// A sequence is either a YAML or JSON file or a comma-separated list of
// durations such as "25:00,5:00,25:00".
//
// Usage:
//
//	mzt <command> [flags] <args>
//
// Commands:
//
//	parse        Convert durations to milliseconds
//	state        Show the state of a sequence at an instant
//	watch        Count a sequence down live
//	interactive  Start, pause and resume a sequence from a shell
//	log          View a recorded event log
//	cleanruns    Delete ended runs from an mzt-web database
//	discover     Find mzt-web servers on the local network
//
// Examples:
//
//	# Show where a recorded run stands now
//	mzt state run.yaml
//
//	# Full-screen pomodoro with a chime between segments
//	mzt watch -tui -chime 25:00,5:00,25:00,15:00
//
//	# Record the transitions of a run and read them back
//	mzt watch -log tea.tlog 3:00
//	mzt log view -kind ended tea.tlog
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mzt-timers/mzt-go/cmd/mzt/commands"
	"github.com/mzt-timers/mzt-go/cmd/mzt/interactive"
	"github.com/mzt-timers/mzt-go/pkg/discovery"
	"github.com/mzt-timers/mzt-go/pkg/log"
	"github.com/mzt-timers/mzt-go/pkg/persistence"
	"github.com/mzt-timers/mzt-go/pkg/render"
	"github.com/mzt-timers/mzt-go/pkg/sequence"
	"github.com/mzt-timers/mzt-go/pkg/timer"
	"github.com/mzt-timers/mzt-go/pkg/watch"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

const usage = `mzt - Sequential Countdown Timers

Usage:
  mzt <command> [flags] <args>

Commands:
  parse        Convert durations to milliseconds
  state        Show the state of a sequence at an instant
  watch        Count a sequence down live
  interactive  Start, pause and resume a sequence from a shell
  log          View a recorded event log
  cleanruns    Delete ended runs from an mzt-web database
  discover     Find mzt-web servers on the local network
  version      Show version information

A sequence is a YAML/JSON file or a list of durations like "25:00,5:00".
Use "mzt <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "parse":
		runParse(args)
	case "state":
		runState(args)
	case "watch":
		runWatch(args)
	case "interactive", "i":
		runInteractive(args)
	case "log":
		runLog(args)
	case "cleanruns":
		runCleanRuns(args)
	case "discover":
		runDiscover(args)
	case "version":
		fmt.Printf("mzt %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set whose usage text starts with summary.
func newFlagSet(name, args, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "mzt %s - %s\n\nUsage:\n  mzt %s [flags] %s\n\nFlags:\n", name, summary, name, args)
		fs.PrintDefaults()
	}
	return fs
}

// renderFlags registers the display flags shared by several commands.
func renderFlags(fs *flag.FlagSet) *render.Config {
	cfg := &render.Config{}
	fs.BoolVar(&cfg.ShowPast, "past", false, "Show completed timers")
	fs.BoolVar(&cfg.ShowFuture, "future", true, "Show upcoming timers")
	fs.IntVar(&cfg.Width, "width", render.DefaultWidth, "Progress bar width")
	return cfg
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// sequenceArg loads the single sequence argument of fs.
func sequenceArg(fs *flag.FlagSet) *sequence.Sequence {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: sequence file or timer list required")
		fs.Usage()
		os.Exit(1)
	}
	seq, err := commands.LoadSequence(strings.Join(fs.Args(), ","))
	if err != nil {
		fatal(err)
	}
	return seq
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runParse(args []string) {
	fs := newFlagSet("parse", "<duration>...", "Convert durations to milliseconds")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: at least one duration required")
		fs.Usage()
		os.Exit(1)
	}
	if err := commands.RunParse(fs.Args(), os.Stdout); err != nil {
		fatal(err)
	}
}

func runState(args []string) {
	fs := newFlagSet("state", "<sequence>", "Show the state of a sequence at an instant")
	at := fs.String("at", "", "Instant to evaluate (RFC 3339, default now)")
	asJSON := fs.Bool("json", false, "Print the state as JSON")
	cfg := renderFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	opts := commands.StateOptions{At: time.Now(), JSON: *asJSON, Render: *cfg}
	if *at != "" {
		t, err := timer.ParseInstant(*at)
		if err != nil {
			fatal(err)
		}
		opts.At = t
	}

	seq := sequenceArg(fs)
	if err := commands.RunState(seq, opts, os.Stdout); err != nil {
		fatal(err)
	}
}

func runWatch(args []string) {
	fs := newFlagSet("watch", "<sequence>", "Count a sequence down live")
	interval := fs.Duration("interval", watch.DefaultInterval, "Sampling interval")
	tui := fs.Bool("tui", false, "Full-screen display (space pauses, q quits)")
	withChime := fs.Bool("chime", false, "Chime when a timer ends")
	logPath := fs.String("log", "", "Record transition events to a log file")
	verbose := fs.Bool("v", false, "Print transition events to stderr")
	cfg := renderFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	seq := sequenceArg(fs)
	ctx, cancel := signalContext()
	defer cancel()

	err := commands.RunWatch(ctx, seq, commands.WatchOptions{
		Interval: *interval,
		TUI:      *tui,
		Chime:    *withChime,
		LogPath:  *logPath,
		Verbose:  *verbose,
		Render:   *cfg,
	}, os.Stdout, os.Stderr)
	if err != nil && ctx.Err() == nil {
		fatal(err)
	}
}

func runInteractive(args []string) {
	fs := newFlagSet("interactive", "<sequence>", "Start, pause and resume a sequence from a shell")
	statePath := fs.String("state", defaultStatePath(), "File keeping the run across restarts (empty to disable)")
	cfg := renderFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	seq := sequenceArg(fs)

	var store *persistence.RunStateStore
	if *statePath != "" {
		store = persistence.NewRunStateStore(*statePath)
	}

	session, err := interactive.New(interactive.Config{
		Sequence: seq,
		Store:    store,
		Render:   *cfg,
	})
	if err != nil {
		fatal(err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := session.Run(ctx); err != nil {
		fatal(err)
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mzt", "run.json")
}

func runLog(args []string) {
	if len(args) < 1 || args[0] != "view" {
		fmt.Fprintln(os.Stderr, "Usage: mzt log view [flags] <file.tlog>")
		os.Exit(1)
	}

	fs := newFlagSet("log view", "<file.tlog>", "View a recorded event log")
	runID := fs.String("run", "", "Filter by run ID")
	kind := fs.String("kind", "", "Filter by event kind (started, paused, resumed, segment_advanced, ended)")
	since := fs.String("since", "", "Only events at or after this instant (RFC 3339)")
	until := fs.String("until", "", "Only events before this instant (RFC 3339)")
	if err := fs.Parse(args[1:]); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter := log.Filter{RunID: *runID}
	if *kind != "" {
		k, err := commands.ParseKindFlag(*kind)
		if err != nil {
			fatal(err)
		}
		filter.Kind = &k
	}
	if *since != "" {
		t, err := timer.ParseInstant(*since)
		if err != nil {
			fatal(err)
		}
		filter.TimeStart = &t
	}
	if *until != "" {
		t, err := timer.ParseInstant(*until)
		if err != nil {
			fatal(err)
		}
		filter.TimeEnd = &t
	}

	if err := commands.RunView(fs.Arg(0), filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runCleanRuns(args []string) {
	fs := newFlagSet("cleanruns", "", "Delete ended runs from an mzt-web database")
	dbPath := fs.String("db", "./mzt-web.db", "SQLite database path")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if err := commands.RunCleanRuns(*dbPath, time.Now(), os.Stdout); err != nil {
		fatal(err)
	}
}

func runDiscover(args []string) {
	fs := newFlagSet("discover", "", "Find mzt-web servers on the local network")
	timeout := fs.Duration("timeout", discovery.BrowseTimeout, "How long to listen for answers")
	iface := fs.String("interface", "", "Network interface to browse on")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	browser := discovery.NewBrowser(discovery.BrowserConfig{Interface: *iface, Timeout: *timeout})
	if err := commands.RunDiscover(ctx, browser, os.Stdout); err != nil {
		fatal(err)
	}
}
