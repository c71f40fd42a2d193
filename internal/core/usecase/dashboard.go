package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const (
	dashboardDeadlines   = 6
	dashboardDocuments   = 5
	dashboardSuggestions = 4
)

type DashboardUseCase struct {
	docs        ports.DocumentStore
	deadlines   ports.DeadlineStore
	suggestions ports.SuggestionStore
	cache       ports.QueryCache
	now         func() time.Time
}

func NewDashboardUseCase(
	docs ports.DocumentStore,
	deadlines ports.DeadlineStore,
	suggestions ports.SuggestionStore,
	cache ports.QueryCache,
) *DashboardUseCase {
	return &DashboardUseCase{
		docs:        docs,
		deadlines:   deadlines,
		suggestions: suggestions,
		cache:       cache,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard never fails on a store error; the affected panel is just empty.
func (uc *DashboardUseCase) Dashboard(ctx context.Context, user domain.User) (*domain.Dashboard, error) {
	deadlines, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryUpcomingDeadlines, func(ctx context.Context) ([]domain.Deadline, error) {
		return uc.deadlines.Filter(ctx,
			ownedBy(user, domain.Predicate{"status": string(domain.DeadlineStatusPending)}),
			"due_date",
			dashboardDeadlines,
		)
	})
	if err != nil {
		slog.Warn("dashboard_deadlines_failed", "owner_id", user.ID, "error", err)
	}

	docs, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryRecentDocuments, func(ctx context.Context) ([]domain.Document, error) {
		return uc.docs.Filter(ctx, ownedBy(user, nil), "-created_at", dashboardDocuments)
	})
	if err != nil {
		slog.Warn("dashboard_documents_failed", "owner_id", user.ID, "error", err)
	}

	suggestions, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryAISuggestions, func(ctx context.Context) ([]domain.AISuggestion, error) {
		return uc.suggestions.Filter(ctx,
			ownedBy(user, domain.Predicate{"status": string(domain.SuggestionNew)}),
			"-created_at",
			dashboardSuggestions,
		)
	})
	if err != nil {
		slog.Warn("dashboard_suggestions_failed", "owner_id", user.ID, "error", err)
	}

	now := uc.now()
	views := make([]domain.DeadlineView, 0, len(deadlines))
	for _, d := range deadlines {
		views = append(views, domain.NewDeadlineView(d, now))
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	if suggestions == nil {
		suggestions = []domain.AISuggestion{}
	}

	return &domain.Dashboard{
		User:        user,
		Deadlines:   views,
		Documents:   docs,
		Suggestions: suggestions,
		UrgentCount: domain.CountUrgent(deadlines, now),
	}, nil
}
