// Command mzt-web serves timer sequences and their runs over HTTP.
//
// It offers:
//   - REST API to create sequences and start, pause and resume runs
//   - Server-Sent Events stream of a run's state until it ends
//   - SQLite persistence for sequences, runs and pause history
//   - Optional mDNS advertisement for discovery with "mzt discover"
//
// Usage:
//
//	mzt-web [flags]
//
// Flags:
//
//	-port int          HTTP server port (default 8080, env MZT_PORT)
//	-db string         SQLite database path (default "./mzt-web.db", env MZT_DB)
//	-secret string     Session signing secret (env MZT_SECRET)
//	-mdns              Advertise on the local network (env MZT_MDNS)
//	-name string       Advertised name (default host name, env MZT_NAME)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Settings are also read from a .env file in the working directory.
//
// Examples:
//
//	# Start the web server on default port
//	mzt-web
//
//	# Advertise as "kitchen" on port 9000
//	mzt-web -port 9000 -mdns -name kitchen
//
//	# Use an in-memory database (for testing)
//	mzt-web -db :memory:
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

type options struct {
	ServerConfig
	logLevel    string
	showVersion bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env file is fine.
	_ = godotenv.Load()

	opts, err := parseFlags(args, os.Getenv, os.Stderr)
	if err != nil {
		return 2
	}

	if opts.showVersion {
		fmt.Printf("mzt-web %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts.Logger = logger
	opts.Version = Version

	srv, err := NewServer(opts.ServerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create server: %v\n", err)
		return 1
	}
	defer srv.Close()

	logger.Info("starting mzt-web", "url", fmt.Sprintf("http://localhost:%d", opts.Port), "db", opts.DBPath)

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
		return 1
	}

	return 0
}

// parseFlags parses args. Environment variables supply the defaults.
func parseFlags(args []string, getenv func(string) string, output io.Writer) (*options, error) {
	host, _ := os.Hostname()
	if host == "" {
		host = "mzt-web"
	}

	envString := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	envInt := func(key string, def int) int {
		if v, err := strconv.Atoi(getenv(key)); err == nil {
			return v
		}
		return def
	}
	envBool := func(key string) bool {
		v, _ := strconv.ParseBool(getenv(key))
		return v
	}

	opts := &options{}
	fs := flag.NewFlagSet("mzt-web", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&opts.Port, "port", envInt("MZT_PORT", 8080), "HTTP server port")
	fs.StringVar(&opts.DBPath, "db", envString("MZT_DB", "./mzt-web.db"), "SQLite database path")
	fs.StringVar(&opts.Secret, "secret", getenv("MZT_SECRET"), "Session signing secret")
	fs.BoolVar(&opts.MDNS, "mdns", envBool("MZT_MDNS"), "Advertise on the local network")
	fs.StringVar(&opts.Name, "name", envString("MZT_NAME", host), "Advertised name")
	fs.StringVar(&opts.logLevel, "log-level", envString("MZT_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
