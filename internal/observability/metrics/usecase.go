package metrics

import (
	"context"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

type instrumentedIngestor struct {
	next ports.DocumentIngestor
	m    *Metrics
}

// InstrumentIngestor counts file outcomes and batch latency around next.
func (m *Metrics) InstrumentIngestor(next ports.DocumentIngestor) ports.DocumentIngestor {
	return &instrumentedIngestor{next: next, m: m}
}

func (i *instrumentedIngestor) UploadBatch(ctx context.Context, user domain.User, files []domain.UploadFile) (*domain.BatchResult, error) {
	start := time.Now()
	result, err := i.next.UploadBatch(ctx, user, files)

	if result != nil {
		for _, f := range result.Files {
			i.m.ingestFilesTotal.WithLabelValues(i.m.service, string(f.Outcome)).Inc()
		}
	}
	i.m.ingestBatchDuration.WithLabelValues(i.m.service, status(err)).Observe(time.Since(start).Seconds())
	return result, err
}

type instrumentedAssistant struct {
	ports.Assistant
	m *Metrics
}

func (m *Metrics) InstrumentAssistant(next ports.Assistant) ports.Assistant {
	return &instrumentedAssistant{Assistant: next, m: m}
}

func (a *instrumentedAssistant) Ask(ctx context.Context, user domain.User, text string) (domain.ChatMessage, error) {
	start := time.Now()
	msg, err := a.Assistant.Ask(ctx, user, text)
	a.observe("ask", start, err)
	return msg, err
}

func (a *instrumentedAssistant) AnalyzeFile(ctx context.Context, user domain.User, file domain.UploadFile) (domain.ChatMessage, error) {
	start := time.Now()
	msg, err := a.Assistant.AnalyzeFile(ctx, user, file)
	a.observe("analyze_file", start, err)
	return msg, err
}

func (a *instrumentedAssistant) observe(kind string, start time.Time, err error) {
	a.m.assistantRunsTotal.WithLabelValues(a.m.service, kind, status(err)).Inc()
	if err == nil {
		a.m.assistantDuration.WithLabelValues(a.m.service, kind).Observe(time.Since(start).Seconds())
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsKind(err, domain.ErrAssistantBusy):
		return "busy"
	default:
		return "error"
	}
}
