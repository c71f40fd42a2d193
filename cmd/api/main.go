package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/doc-compliance/internal/adapters/http"
	"github.com/kirillkom/doc-compliance/internal/bootstrap"
	"github.com/kirillkom/doc-compliance/internal/config"
	"github.com/kirillkom/doc-compliance/internal/observability/logging"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	if cfg.SessionSecret == "" {
		slog.Error("bootstrap_failed", "error", "SESSION_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.ListenInvalidations(ctx)

	router := httpadapter.NewRouter(httpadapter.Services{
		Ingest:        app.IngestUC,
		Documents:     app.DocumentsUC,
		Dashboard:     app.DashboardUC,
		Entities:      app.EntitiesUC,
		Deadlines:     app.DeadlinesUC,
		Notifications: app.NotificationsUC,
		Suggestions:   app.SuggestionsUC,
		Assistant:     app.AssistantUC,
		Sessions:      app.Sessions,
		Events:        app.Cache,
	}, httpadapter.Options{
		SessionCookie:  cfg.SessionCookie,
		MaxUploadBytes: cfg.IngestMaxUploadBytes,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxInFlight:    cfg.MaxInFlight,
		Metrics:        app.Metrics,
		Files:          app.Files,
		Ready:          app.Ready,
	}).Handler()

	// No WriteTimeout: /v1/events streams for as long as the client stays.
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "instance_id", cfg.InstanceID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
