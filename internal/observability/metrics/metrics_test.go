package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

type ingestorFake struct {
	result *domain.BatchResult
	err    error
}

func (f ingestorFake) UploadBatch(context.Context, domain.User, []domain.UploadFile) (*domain.BatchResult, error) {
	return f.result, f.err
}

type assistantFake struct {
	err error
}

func (f assistantFake) Ask(context.Context, domain.User, string) (domain.ChatMessage, error) {
	return domain.ChatMessage{}, f.err
}

func (f assistantFake) AnalyzeFile(context.Context, domain.User, domain.UploadFile) (domain.ChatMessage, error) {
	return domain.ChatMessage{}, f.err
}

func (assistantFake) Transcript(domain.User) []domain.ChatMessage { return nil }

func (assistantFake) Reset(domain.User) {}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/v1/documents":                    "/v1/documents",
		"/v1/documents/abc":                "/v1/documents/{id}",
		"/v1/notifications/n1/read":        "/v1/notifications/{id}/read",
		"/v1/suggestions/s1/dismiss":       "/v1/suggestions/{id}/dismiss",
		"/v1/assistant/messages":           "/v1/assistant/messages",
		"/files/2026/10/16/abc-report.pdf": "/files/{key}",
		"/healthz":                         "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	m := New("api")
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/entities/e1", nil))

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "/v1/entities/{id}", "404"))
	if got != 1 {
		t.Fatalf("expected one request recorded, got %v", got)
	}
}

func TestInstrumentIngestorCountsOutcomes(t *testing.T) {
	m := New("api")
	ing := m.InstrumentIngestor(ingestorFake{result: &domain.BatchResult{Files: []domain.FileResult{
		{Name: "a", Outcome: domain.OutcomeReady},
		{Name: "b", Outcome: domain.OutcomeNeedsReview},
		{Name: "c", Outcome: domain.OutcomeReady},
	}}})

	if _, err := ing.UploadBatch(context.Background(), domain.User{ID: "u1"}, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got := testutil.ToFloat64(m.ingestFilesTotal.WithLabelValues("api", "ready")); got != 2 {
		t.Fatalf("expected 2 ready files, got %v", got)
	}
	if got := testutil.ToFloat64(m.ingestFilesTotal.WithLabelValues("api", "needs_review")); got != 1 {
		t.Fatalf("expected 1 needs_review file, got %v", got)
	}
}

func TestInstrumentAssistantLabelsBusy(t *testing.T) {
	m := New("api")
	busy := m.InstrumentAssistant(assistantFake{err: domain.WrapError(domain.ErrAssistantBusy, "ask", errors.New("in flight"))})
	_, _ = busy.Ask(context.Background(), domain.User{ID: "u1"}, "hi")

	if got := testutil.ToFloat64(m.assistantRunsTotal.WithLabelValues("api", "ask", "busy")); got != 1 {
		t.Fatalf("expected busy run recorded, got %v", got)
	}
}

func TestBreakerStateAndCacheCounters(t *testing.T) {
	m := New("api")
	m.ObserveBreakerState("ollama.generate", gobreaker.StateClosed, gobreaker.StateOpen)
	m.CacheInvalidated("entities", true)

	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("api", "ollama.generate")); got != 2 {
		t.Fatalf("expected open state gauge, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheInvalidations.WithLabelValues("api", "entities", "remote")); got != 1 {
		t.Fatalf("expected remote invalidation counted, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "doccomp_resilience_breaker_transitions_total") {
		t.Fatalf("expected breaker metric exported")
	}
}
