package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cexll/ideas-portal/internal/config"
	"github.com/cexll/ideas-portal/internal/tools"
)

func main() {
	// stdout carries the protocol
	logger := clog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := clog.WithLogger(context.Background(), logger)

	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "Failed to load configuration: %v", err)
	}
	if cfg.GitHubRepo == "" || cfg.GitHubToken == "" {
		logger.Warn("GITHUB_REPO or GITHUB_TOKEN not set, tool calls will report errors")
	}

	server := NewServer(tools.New(), cfg.PublicBaseURL)
	logger.With("name", serverName).With("version", serverVersion).Info("Starting MCP server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		clog.FatalContextf(ctx, "Server error: %v", err)
	}
	logger.Info("Server stopped gracefully")
}
