package ports

import (
	"context"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the upload → analyze → persist pipeline.
type DocumentIngestor interface {
	UploadBatch(ctx context.Context, user domain.User, files []domain.UploadFile) (*domain.BatchResult, error)
}

// Assistant is the inbound contract for the grounded chat.
type Assistant interface {
	Ask(ctx context.Context, user domain.User, text string) (domain.ChatMessage, error)
	AnalyzeFile(ctx context.Context, user domain.User, file domain.UploadFile) (domain.ChatMessage, error)
	Transcript(user domain.User) []domain.ChatMessage
	Reset(user domain.User)
}

// DocumentReader serves the document list and detail views.
type DocumentReader interface {
	ListDocuments(ctx context.Context, user domain.User, filter domain.DocumentListFilter) ([]domain.Document, error)
	GetDocument(ctx context.Context, user domain.User, id string) (*domain.DocumentDetail, error)
}

// DashboardReader serves the landing page aggregate.
type DashboardReader interface {
	Dashboard(ctx context.Context, user domain.User) (*domain.Dashboard, error)
}

// EntityService serves and mutates tracked people and businesses.
type EntityService interface {
	ListEntities(ctx context.Context, user domain.User, filter domain.EntityListFilter) ([]domain.Entity, error)
	GetEntity(ctx context.Context, user domain.User, id string) (*domain.EntityDetail, error)
	CreateEntity(ctx context.Context, user domain.User, entity domain.Entity) (*domain.Entity, error)
	UpdateEntity(ctx context.Context, user domain.User, id string, patch domain.Patch) error
}

// DeadlineService serves and mutates deadlines.
type DeadlineService interface {
	ListPending(ctx context.Context, user domain.User, limit int) ([]domain.DeadlineView, error)
	CreateDeadline(ctx context.Context, user domain.User, deadline domain.Deadline) (*domain.Deadline, error)
	UpdateDeadline(ctx context.Context, user domain.User, id string, patch domain.Patch) error
}

// NotificationService serves the notification center.
type NotificationService interface {
	ListNotifications(ctx context.Context, user domain.User, filter domain.ReadFilter) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, user domain.User) (int, error)
	MarkRead(ctx context.Context, user domain.User, id string) error
	MarkAllRead(ctx context.Context, user domain.User) (int, error)
}

// SuggestionService applies user decisions to AI suggestions.
type SuggestionService interface {
	Dismiss(ctx context.Context, user domain.User, id string) error
	Action(ctx context.Context, user domain.User, id string) error
}
