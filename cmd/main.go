package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/cexll/ideas-portal/internal/config"
	"github.com/cexll/ideas-portal/internal/eventstore"
	"github.com/cexll/ideas-portal/internal/surface"
	"github.com/cexll/ideas-portal/internal/tools"
	"github.com/cexll/ideas-portal/internal/web"
)

var (
	loadDotEnv         = godotenv.Load
	newRegistry        = surface.NewRegistry
	newEventStore      = eventstore.NewStore
	newToolset         = func() *tools.Toolset { return tools.New() }
	newWebHandler      = web.NewHandler
	defaultListenServe = http.ListenAndServe
)

func main() {
	ctx := context.Background()
	if err := run(ctx, defaultListenServe); err != nil {
		clog.FatalContextf(ctx, "Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := clog.FromContext(ctx)
	log.With("port", cfg.Port).With("base_url", cfg.PublicBaseURL).Info("Starting ideas portal")
	if cfg.GitHubRepo == "" || cfg.GitHubToken == "" {
		log.Warn("GITHUB_REPO or GITHUB_TOKEN not set, GitHub tools will report errors")
	} else {
		log.With("repo", cfg.GitHubRepo).Info("GitHub tools enabled")
	}
	if cfg.SigningEnabled() {
		log.With("ttl", cfg.ActionTokenTTL).Info("Action tokens required")
	}

	webHandler, err := newWebHandler(newRegistry(), newEventStore(), newToolset(), web.Options{
		BaseURL:       cfg.PublicBaseURL,
		SigningSecret: cfg.ActionSigningSecret,
		TokenTTL:      cfg.ActionTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize web handler: %w", err)
	}

	r := mux.NewRouter()
	webHandler.RegisterRoutes(r)

	// Root endpoint with info
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "ideas-portal",
			"status":  "running",
			"tools":   tools.Names,
		})
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.With("addr", addr).Info("Server listening")
	clog.InfoContextf(ctx, "Surfaces: %s/surfaces", cfg.PublicBaseURL)
	clog.InfoContextf(ctx, "Action events: %s/events", cfg.PublicBaseURL)

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}
