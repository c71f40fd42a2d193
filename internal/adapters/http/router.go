package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const (
	defaultMaxUploadBytes = 50 << 20
	multipartMemory       = 8 << 20
	backpressureWait      = 50 * time.Millisecond
)

// EventSource streams cache invalidations of one owner.
type EventSource interface {
	Listen(owner string) (<-chan domain.Invalidation, func())
}

// MetricsExporter instruments the handler chain and serves /metrics.
type MetricsExporter interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Services struct {
	Ingest        ports.DocumentIngestor
	Documents     ports.DocumentReader
	Dashboard     ports.DashboardReader
	Entities      ports.EntityService
	Deadlines     ports.DeadlineService
	Notifications ports.NotificationService
	Suggestions   ports.SuggestionService
	Assistant     ports.Assistant
	Sessions      ports.SessionProvider
	Events        EventSource
}

type Options struct {
	SessionCookie  string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	Metrics        MetricsExporter
	// Files serves stored uploads under /files/ when storage is local.
	Files http.Handler
	// Ready reports dependency health for /readyz.
	Ready func(ctx context.Context) error
}

type Router struct {
	ingest        ports.DocumentIngestor
	documents     ports.DocumentReader
	dashboard     ports.DashboardReader
	entities      ports.EntityService
	deadlines     ports.DeadlineService
	notifications ports.NotificationService
	suggestions   ports.SuggestionService
	assistant     ports.Assistant
	sessions      ports.SessionProvider
	events        EventSource

	sessionCookie  string
	maxUploadBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
	metrics        MetricsExporter
	files          http.Handler
	ready          func(ctx context.Context) error
}

func NewRouter(svc Services, opts Options) *Router {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Router{
		ingest:         svc.Ingest,
		documents:      svc.Documents,
		dashboard:      svc.Dashboard,
		entities:       svc.Entities,
		deadlines:      svc.Deadlines,
		notifications:  svc.Notifications,
		suggestions:    svc.Suggestions,
		assistant:      svc.Assistant,
		sessions:       svc.Sessions,
		events:         svc.Events,
		sessionCookie:  opts.SessionCookie,
		maxUploadBytes: maxUpload,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
		maxInFlight:    opts.MaxInFlight,
		metrics:        opts.Metrics,
		files:          opts.Files,
		ready:          opts.Ready,
	}
}

func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", rt.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", rt.readyz).Methods(http.MethodGet)
	if rt.metrics != nil {
		r.Handle("/metrics", rt.metrics.Handler()).Methods(http.MethodGet)
	}
	if rt.files != nil {
		r.PathPrefix("/files/").Handler(http.StripPrefix("/files", rt.files)).Methods(http.MethodGet, http.MethodHead)
	}

	r.HandleFunc("/v1/session/login", rt.login).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(rt.authMiddleware)

	api.HandleFunc("/session/me", rt.me).Methods(http.MethodGet)
	api.HandleFunc("/session/logout", rt.logout).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", rt.getDashboard).Methods(http.MethodGet)

	api.HandleFunc("/documents", rt.listDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents", rt.uploadDocuments).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}", rt.getDocument).Methods(http.MethodGet)

	api.HandleFunc("/entities", rt.listEntities).Methods(http.MethodGet)
	api.HandleFunc("/entities", rt.createEntity).Methods(http.MethodPost)
	api.HandleFunc("/entities/{id}", rt.getEntity).Methods(http.MethodGet)
	api.HandleFunc("/entities/{id}", rt.updateEntity).Methods(http.MethodPatch)

	api.HandleFunc("/deadlines", rt.listDeadlines).Methods(http.MethodGet)
	api.HandleFunc("/deadlines", rt.createDeadline).Methods(http.MethodPost)
	api.HandleFunc("/deadlines/{id}", rt.updateDeadline).Methods(http.MethodPatch)

	api.HandleFunc("/notifications", rt.listNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", rt.unreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", rt.markAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}/read", rt.markRead).Methods(http.MethodPost)

	api.HandleFunc("/suggestions/{id}/dismiss", rt.dismissSuggestion).Methods(http.MethodPost)
	api.HandleFunc("/suggestions/{id}/action", rt.actionSuggestion).Methods(http.MethodPost)

	api.HandleFunc("/assistant/messages", rt.transcript).Methods(http.MethodGet)
	api.HandleFunc("/assistant/messages", rt.ask).Methods(http.MethodPost)
	api.HandleFunc("/assistant/messages", rt.resetAssistant).Methods(http.MethodDelete)
	api.HandleFunc("/assistant/files", rt.analyzeFile).Methods(http.MethodPost)

	api.HandleFunc("/events", rt.streamEvents).Methods(http.MethodGet)

	// Probes skip traffic control; long-lived event streams skip the in-flight bound.
	bounded := backpressureMiddleware(r, rt.maxInFlight, backpressureWait)
	limited := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/v1/events" {
			r.ServeHTTP(w, req)
			return
		}
		bounded.ServeHTTP(w, req)
	}), rt.rateLimitRPS, rt.rateLimitBurst)
	h := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			r.ServeHTTP(w, req)
		default:
			limited.ServeHTTP(w, req)
		}
	})
	var chain http.Handler = h
	if rt.metrics != nil {
		chain = rt.metrics.Middleware(chain)
	}
	return requestIDMiddleware(accessLogMiddleware(chain))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) readyz(w http.ResponseWriter, r *http.Request) {
	if rt.ready != nil {
		if err := rt.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", err)
	}
	return nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
