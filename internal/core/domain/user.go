package domain

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Dashboard is the aggregate shown on the landing page.
type Dashboard struct {
	User        User           `json:"user"`
	Deadlines   []DeadlineView `json:"upcoming_deadlines"`
	Documents   []Document     `json:"recent_documents"`
	Suggestions []AISuggestion `json:"suggestions"`
	UrgentCount int            `json:"urgent_count"`
}
