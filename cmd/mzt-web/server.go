package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mzt-timers/mzt-go/cmd/mzt-web/api"
	"github.com/mzt-timers/mzt-go/pkg/discovery"
	"github.com/mzt-timers/mzt-go/pkg/version"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port    int
	DBPath  string
	Secret  string
	Version string

	// MDNS advertises the server as Name on the local network.
	MDNS bool
	Name string

	Logger *slog.Logger
}

// Server is the mzt-web HTTP server.
type Server struct {
	config     ServerConfig
	logger     *slog.Logger
	mux        *http.ServeMux
	server     *http.Server
	store      *api.Store
	seqAPI     *api.SequencesAPI
	runsAPI    *api.RunsAPI
	advertiser *discovery.Advertiser
}

// NewServer creates a new server with the given configuration.
func NewServer(cfg ServerConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := api.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	sessions, err := api.NewSessions(cfg.Secret)
	if err != nil {
		store.Close()
		return nil, err
	}
	if cfg.Secret == "" {
		logger.Warn("no session secret configured, sessions end when the server stops")
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		mux:     http.NewServeMux(),
		store:   store,
		seqAPI:  api.NewSequencesAPI(store, sessions),
		runsAPI: api.NewRunsAPI(store, sessions, logger),
	}
	if cfg.MDNS {
		s.advertiser = discovery.NewAdvertiser(discovery.AdvertiserConfig{})
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.mux,
	}

	return s, nil
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/info", s.handleInfo)

	s.mux.HandleFunc("/api/v1/sequences", s.seqAPI.HandleSequences)
	s.mux.HandleFunc("/api/v1/sequences/", s.seqAPI.HandleSequenceByID)

	s.mux.HandleFunc("/api/v1/runs/", s.runsAPI.HandleRunByID)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	v := s.config.Version
	if v == "" {
		v = "dev"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": v,
	})
}

// handleInfo returns server information.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seqCount, _ := s.store.CountSequences()
	runCount, _ := s.store.CountRuns()

	writeJSON(w, http.StatusOK, map[string]any{
		"api_version":    version.Current,
		"api_path":       version.CurrentAPIPath(),
		"sequence_count": seqCount,
		"run_count":      runCount,
	})
}

// ListenAndServe advertises the server when configured and starts the HTTP
// server. A failed advertisement is logged, not fatal.
func (s *Server) ListenAndServe() error {
	if s.advertiser != nil {
		info := &discovery.Info{
			Name: s.config.Name,
			Port: s.config.Port,
		}
		if err := s.advertiser.Advertise(info); err != nil {
			s.logger.Warn("mDNS advertisement failed", "error", err)
		} else {
			s.logger.Info("advertising on mDNS", "service", discovery.ServiceType, "name", s.config.Name)
		}
	}
	return s.server.ListenAndServe()
}

// Close stops advertising and closes the store.
func (s *Server) Close() error {
	if s.advertiser != nil {
		s.advertiser.Stop()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
