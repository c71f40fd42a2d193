package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/doc-compliance/internal/config"
	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
	"github.com/kirillkom/doc-compliance/internal/core/usecase"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/auth"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/cache"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/extractor"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/queue/nats"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/resilience"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/storage/s3store"
	"github.com/kirillkom/doc-compliance/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics
	Cache   *cache.QueryCache
	Bus     ports.InvalidationBus

	IngestUC        ports.DocumentIngestor
	AssistantUC     ports.Assistant
	DocumentsUC     ports.DocumentReader
	DashboardUC     ports.DashboardReader
	EntitiesUC      ports.EntityService
	DeadlinesUC     ports.DeadlineService
	NotificationsUC ports.NotificationService
	SuggestionsUC   ports.SuggestionService
	Sessions        ports.SessionProvider

	// Files serves local uploads; nil when files live in S3.
	Files http.Handler

	db      *sql.DB
	closeFn []func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	app := &App{Config: cfg, Metrics: metrics.New(service)}
	if err := app.init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	a.db = db
	a.onClose(func() { _ = db.Close() })
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	resCfg := resilience.DefaultConfig()
	resCfg.BreakerEnabled = cfg.BreakerEnabled
	resCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	executor := resilience.NewExecutor(resCfg).WithStateObserver(a.Metrics.ObserveBreakerState)

	storage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}

	ai, err := a.openAI(ctx, storage, executor)
	if err != nil {
		return err
	}

	if cfg.NATSURL != "" {
		bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			return fmt.Errorf("init invalidation bus: %w", err)
		}
		a.Bus = bus
		a.onClose(bus.Close)
	}

	a.Cache = cache.New(cache.Options{
		Size:     cfg.CacheSize,
		TTL:      cfg.CacheTTL,
		Origin:   cfg.InstanceID,
		Bus:      a.Bus,
		Recorder: a.Metrics,
	})

	if cfg.SessionSecret != "" {
		sessions, err := auth.NewSessionProvider(auth.Config{
			Secret:   cfg.SessionSecret,
			Issuer:   cfg.SessionIssuer,
			LoginURL: cfg.SessionLoginURL,
			TokenTTL: cfg.SessionTokenTTL,
		})
		if err != nil {
			return fmt.Errorf("init sessions: %w", err)
		}
		a.Sessions = sessions
	}

	docs := postgres.NewDocumentStore(db)
	deadlines := postgres.NewDeadlineStore(db)
	entities := postgres.NewEntityStore(db)
	notifications := postgres.NewNotificationStore(db)
	suggestions := postgres.NewSuggestionStore(db)

	assistant, err := usecase.NewAssistantUseCase(docs, deadlines, storage, ai, cfg.AssistantMaxSessions)
	if err != nil {
		return fmt.Errorf("init assistant: %w", err)
	}
	policy := domain.ParseUploadFailurePolicy(cfg.IngestUploadFailurePolicy)

	a.IngestUC = a.Metrics.InstrumentIngestor(usecase.NewIngestDocumentUseCase(docs, storage, ai, a.Cache, policy))
	a.AssistantUC = a.Metrics.InstrumentAssistant(assistant)
	a.DocumentsUC = usecase.NewDocumentQueryUseCase(docs, a.Cache)
	a.DashboardUC = usecase.NewDashboardUseCase(docs, deadlines, suggestions, a.Cache)
	a.EntitiesUC = usecase.NewEntityUseCase(entities, docs, deadlines, a.Cache)
	a.DeadlinesUC = usecase.NewDeadlineUseCase(deadlines, a.Cache)
	a.NotificationsUC = usecase.NewNotificationUseCase(notifications, a.Cache)
	a.SuggestionsUC = usecase.NewSuggestionUseCase(suggestions, a.Cache)
	return nil
}

func (a *App) openStorage(ctx context.Context) (ports.FileStorage, error) {
	cfg := a.Config
	switch strings.ToLower(cfg.StorageBackend) {
	case "s3":
		storage, err := s3store.New(ctx, s3store.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return storage, nil
	case "", "localfs":
		storage, err := localfs.New(cfg.StoragePath, cfg.StoragePublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		a.Files = storage.Handler()
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func (a *App) openAI(ctx context.Context, storage ports.FileStorage, executor *resilience.Executor) (ports.AIInvoker, error) {
	cfg := a.Config
	switch strings.ToLower(cfg.AIProvider) {
	case "gemini":
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, storage, executor)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		a.onClose(func() { _ = client.Close() })
		return client, nil
	case "", "ollama":
		attachments := ollama.NewFileAttachments(storage, extractor.NewRegistry(cfg.ExtractMaxChar))
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout, attachments, executor), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}

// ListenInvalidations applies other replicas' invalidations until ctx ends.
// Without a bus it returns immediately.
func (a *App) ListenInvalidations(ctx context.Context) {
	if a.Bus == nil {
		return
	}
	if err := a.Bus.SubscribeInvalidations(ctx, a.Cache.HandleRemote); err != nil {
		slog.Error("invalidation_listener_stopped", "error", err)
	}
}

func (a *App) Ready(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func (a *App) onClose(fn func()) {
	a.closeFn = append(a.closeFn, fn)
}

func (a *App) Close() {
	for i := len(a.closeFn) - 1; i >= 0; i-- {
		a.closeFn[i]()
	}
	a.closeFn = nil
}
