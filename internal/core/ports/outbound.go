package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

// Collection is the entity store contract for one record type.
// Filter and order keys are record field names; a leading "-" on order means descending.
type Collection[T any] interface {
	Create(ctx context.Context, record *T) error
	List(ctx context.Context, order domain.Order, limit int) ([]T, error)
	Filter(ctx context.Context, where domain.Predicate, order domain.Order, limit int) ([]T, error)
	Update(ctx context.Context, id string, patch domain.Patch) error
}

type (
	DocumentStore     = Collection[domain.Document]
	DeadlineStore     = Collection[domain.Deadline]
	EntityStore       = Collection[domain.Entity]
	NotificationStore = Collection[domain.Notification]
	SuggestionStore   = Collection[domain.AISuggestion]
)

// FileStorage stores raw uploads and hands back durable URLs.
type FileStorage interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (domain.StoredFile, error)
	Open(ctx context.Context, fileURL string) (io.ReadCloser, error)
}

// AIInvoker is the AI inference service.
type AIInvoker interface {
	InvokeText(ctx context.Context, req domain.AIRequest) (string, error)
	InvokeStructured(ctx context.Context, req domain.AIRequest) (json.RawMessage, error)
}

// TextExtractor turns stored file content into prompt text for text-only models.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, body io.Reader) (string, error)
}

// SessionProvider resolves and ends user sessions.
type SessionProvider interface {
	Me(ctx context.Context, token string) (*domain.User, error)
	LoginURL(returnTo string) string
	Logout(ctx context.Context, token string) error
}

// QueryCache holds view query results keyed by owner and logical query name.
// A load calls Reserve before reading the store and hands the token to Set,
// which drops the value if the key was invalidated in between.
type QueryCache interface {
	Get(key domain.QueryKey) (any, bool)
	Reserve(key domain.QueryKey) uint64
	Set(key domain.QueryKey, value any, token uint64) bool
	Invalidate(ctx context.Context, owner string, names ...string)
}

// InvalidationBus carries cache invalidations between service replicas.
type InvalidationBus interface {
	PublishInvalidation(ctx context.Context, inv domain.Invalidation) error
	SubscribeInvalidations(ctx context.Context, handler func(context.Context, domain.Invalidation) error) error
}
