package domain

import (
	"io"
	"strings"
)

// Predicate is an equality filter over record fields, e.g. {"status": "Pending"}.
type Predicate map[string]any

// Patch holds the fields of a partial update.
type Patch map[string]any

// Order is a field name; a leading "-" sorts descending.
type Order string

func (o Order) Field() string { return strings.TrimPrefix(string(o), "-") }

func (o Order) Descending() bool { return strings.HasPrefix(string(o), "-") }

// Logical query names shared by the cache and the invalidation stream.
const (
	QueryCurrentUser         = "currentUser"
	QueryUpcomingDeadlines   = "upcomingDeadlines"
	QueryPendingDeadlines    = "pendingDeadlines"
	QueryRecentDocuments     = "recentDocuments"
	QueryAllDocuments        = "allDocuments"
	QueryAISuggestions       = "aiSuggestions"
	QueryNotifications       = "notifications"
	QueryUnreadNotifications = "unreadNotifications"
	QueryEntities            = "entities"
)

func QueryDocument(id string) string { return "document:" + id }

func QueryEntity(id string) string { return "entity:" + id }

// QueryKey scopes a logical query name to its owner.
type QueryKey struct {
	Owner string
	Name  string
}

func (k QueryKey) String() string { return k.Owner + "/" + k.Name }

// Invalidation announces that the listed queries of one owner are stale.
type Invalidation struct {
	Owner  string   `json:"owner"`
	Keys   []string `json:"keys"`
	Origin string   `json:"origin,omitempty"`
}

// UploadFile is one user-selected file of a batch.
type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// StoredFile is what the file storage service returns for an upload.
type StoredFile struct {
	URL string `json:"file_url"`
	Key string `json:"-"`
}
