package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/doc-compliance/internal/adapters/mcp"
	"github.com/kirillkom/doc-compliance/internal/bootstrap"
	"github.com/kirillkom/doc-compliance/internal/config"
	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/observability/logging"
)

const serviceName = "mcp"

// The MCP server speaks over stdio, so logs must go to stderr.
func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.ListenInvalidations(ctx)

	srv, err := mcpadapter.New(mcpadapter.Services{
		Documents: app.DocumentsUC,
		Deadlines: app.DeadlinesUC,
		Entities:  app.EntitiesUC,
		Dashboard: app.DashboardUC,
		Assistant: app.AssistantUC,
	}, domain.User{ID: cfg.MCPUserID, Email: cfg.MCPUserEmail})
	if err != nil {
		slog.Error("mcp_init_failed", "error", err)
		os.Exit(1)
	}

	slog.Info("mcp_serving_stdio", "user_id", cfg.MCPUserID)
	if err := srv.ServeStdio(); err != nil {
		slog.Error("mcp_server_failed", "error", err)
	}
}
