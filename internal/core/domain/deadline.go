package domain

import (
	"math"
	"time"
)

type DeadlineStatus string

const (
	DeadlineStatusPending   DeadlineStatus = "Pending"
	DeadlineStatusCompleted DeadlineStatus = "Completed"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// UrgentWithinDays is the horizon under which a deadline counts as due soon.
const UrgentWithinDays = 7

type Deadline struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Title     string         `json:"title"`
	DueDate   time.Time      `json:"due_date"`
	Category  string         `json:"category"`
	Priority  Priority       `json:"priority"`
	Status    DeadlineStatus `json:"status"`
	EntityID  *string        `json:"entity_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// DaysUntil is ceil((due - now) in days); overdue deadlines are negative or zero.
func (d Deadline) DaysUntil(now time.Time) int {
	diff := d.DueDate.Sub(now).Hours() / 24
	return int(math.Ceil(diff))
}

func (d Deadline) IsUrgent(now time.Time) bool {
	return d.DaysUntil(now) <= UrgentWithinDays
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityOK       Severity = "ok"
)

func (d Deadline) Severity(now time.Time) Severity {
	days := d.DaysUntil(now)
	switch {
	case d.Priority == PriorityHigh || days < 7:
		return SeverityCritical
	case d.Priority == PriorityMedium || days < 30:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// DeadlineView is a deadline with its derived, time-dependent fields.
type DeadlineView struct {
	Deadline
	DaysUntil int      `json:"days_until"`
	Urgent    bool     `json:"urgent"`
	Severity  Severity `json:"severity"`
}

func NewDeadlineView(d Deadline, now time.Time) DeadlineView {
	return DeadlineView{
		Deadline:  d,
		DaysUntil: d.DaysUntil(now),
		Urgent:    d.IsUrgent(now),
		Severity:  d.Severity(now),
	}
}

func CountUrgent(deadlines []Deadline, now time.Time) int {
	n := 0
	for _, d := range deadlines {
		if d.IsUrgent(now) {
			n++
		}
	}
	return n
}
