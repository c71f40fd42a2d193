package domain

import "time"

type Notification struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  Priority  `json:"priority"`
	Read      bool      `json:"read"`
	ActionURL *string   `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	NotificationTypeDeadline          = "Deadline"
	NotificationTypeComplianceWarning = "Compliance Warning"
	NotificationTypeMissingDocument   = "Missing Document"
	NotificationTypeRegulatoryChange  = "Regulatory Change"
)

// ReadFilter is the notifications tab selector: all, unread or read.
type ReadFilter string

const (
	ReadFilterAll    ReadFilter = "all"
	ReadFilterUnread ReadFilter = "unread"
	ReadFilterRead   ReadFilter = "read"
)

func (f ReadFilter) Match(n Notification) bool {
	switch f {
	case ReadFilterUnread:
		return !n.Read
	case ReadFilterRead:
		return n.Read
	default:
		return true
	}
}

type SuggestionStatus string

const (
	SuggestionNew       SuggestionStatus = "New"
	SuggestionDismissed SuggestionStatus = "Dismissed"
	SuggestionActioned  SuggestionStatus = "Actioned"
)

type AISuggestion struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        string           `json:"type"`
	Priority    Priority         `json:"priority"`
	Status      SuggestionStatus `json:"status"`
	ActionTaken bool             `json:"action_taken"`
	CreatedAt   time.Time        `json:"created_at"`
}
