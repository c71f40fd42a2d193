package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

var editableDeadlineFields = []string{"title", "due_date", "category", "priority", "status", "entity_id"}

type DeadlineUseCase struct {
	deadlines ports.DeadlineStore
	cache     ports.QueryCache
	now       func() time.Time
}

func NewDeadlineUseCase(deadlines ports.DeadlineStore, cache ports.QueryCache) *DeadlineUseCase {
	return &DeadlineUseCase{
		deadlines: deadlines,
		cache:     cache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListPending returns pending deadlines by due date, with days remaining and severity.
func (uc *DeadlineUseCase) ListPending(ctx context.Context, user domain.User, limit int) ([]domain.DeadlineView, error) {
	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}
	pending, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryPendingDeadlines, func(ctx context.Context) ([]domain.Deadline, error) {
		return uc.deadlines.Filter(ctx,
			ownedBy(user, domain.Predicate{"status": string(domain.DeadlineStatusPending)}),
			"due_date",
			listLimit,
		)
	})
	if err != nil {
		return nil, err
	}
	if len(pending) > limit {
		pending = pending[:limit]
	}

	now := uc.now()
	out := make([]domain.DeadlineView, 0, len(pending))
	for _, d := range pending {
		out = append(out, domain.NewDeadlineView(d, now))
	}
	return out, nil
}

func (uc *DeadlineUseCase) CreateDeadline(ctx context.Context, user domain.User, deadline domain.Deadline) (*domain.Deadline, error) {
	deadline.Title = strings.TrimSpace(deadline.Title)
	if deadline.Title == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create deadline", fmt.Errorf("title is required"))
	}
	if deadline.DueDate.IsZero() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create deadline", fmt.Errorf("due_date is required"))
	}
	if deadline.Priority == "" {
		deadline.Priority = domain.PriorityMedium
	}
	if deadline.Status == "" {
		deadline.Status = domain.DeadlineStatusPending
	}
	if err := validateDeadlineEnums(deadline.Priority, deadline.Status); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create deadline", err)
	}
	deadline.ID = uuid.NewString()
	deadline.OwnerID = user.ID
	deadline.CreatedAt = uc.now()

	if err := uc.deadlines.Create(ctx, &deadline); err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, user.ID, domain.QueryUpcomingDeadlines, domain.QueryPendingDeadlines)
	return &deadline, nil
}

func (uc *DeadlineUseCase) UpdateDeadline(ctx context.Context, user domain.User, id string, patch domain.Patch) error {
	if err := checkPatch("update deadline", patch, editableDeadlineFields...); err != nil {
		return err
	}
	if raw, ok := patch["due_date"]; ok {
		due, err := parseDate(raw)
		if err != nil {
			return domain.WrapError(domain.ErrInvalidInput, "update deadline", err)
		}
		patch["due_date"] = due
	}
	priority, _ := patch["priority"].(string)
	status, _ := patch["status"].(string)
	if err := validateDeadlineEnums(domain.Priority(priority), domain.DeadlineStatus(status)); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "update deadline", err)
	}

	current, err := findOwned(ctx, uc.deadlines, user, id, domain.ErrDeadlineNotFound)
	if err != nil {
		return err
	}
	if err := uc.deadlines.Update(ctx, current.ID, patch); err != nil {
		return err
	}
	invalidate(ctx, uc.cache, user.ID, domain.QueryUpcomingDeadlines, domain.QueryPendingDeadlines)
	return nil
}

// validateDeadlineEnums accepts empty values so partial updates can omit them.
func validateDeadlineEnums(priority domain.Priority, status domain.DeadlineStatus) error {
	switch priority {
	case "", domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
	default:
		return fmt.Errorf("unknown priority %q", priority)
	}
	switch status {
	case "", domain.DeadlineStatusPending, domain.DeadlineStatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", status)
	}
	return nil
}
