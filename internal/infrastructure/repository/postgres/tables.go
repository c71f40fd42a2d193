package postgres

import (
	"database/sql"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

var documentTable = Table[domain.Document]{
	Name: "documents",
	Columns: []string{
		"id", "owner_id", "name", "type", "category", "file_url", "extracted_fields",
		"compliance_status", "expiry_date", "ai_notes", "status", "entity_id", "created_at",
	},
	Values: func(d *domain.Document) []any {
		var compliance *string
		if d.ComplianceStatus != nil {
			s := string(*d.ComplianceStatus)
			compliance = &s
		}
		return []any{
			d.ID, d.OwnerID, d.Name, d.Type, d.Category, d.FileURL, d.ExtractedFields,
			compliance, d.ExpiryDate, d.AINotes, string(d.Status), d.EntityID, d.CreatedAt,
		}
	},
	Scan: func(row rowScanner) (domain.Document, error) {
		var (
			d                                       domain.Document
			fields, compliance, expiry, notes, link sql.NullString
			status                                  string
		)
		err := row.Scan(
			&d.ID, &d.OwnerID, &d.Name, &d.Type, &d.Category, &d.FileURL, &fields,
			&compliance, &expiry, &notes, &status, &link, &d.CreatedAt,
		)
		if err != nil {
			return domain.Document{}, err
		}
		d.ExtractedFields = nullableString(fields)
		if compliance.Valid {
			cs := domain.ComplianceStatus(compliance.String)
			d.ComplianceStatus = &cs
		}
		d.ExpiryDate = nullableString(expiry)
		d.AINotes = nullableString(notes)
		d.Status = domain.DocumentStatus(status)
		d.EntityID = nullableString(link)
		return d, nil
	},
	NotFound: domain.ErrDocumentNotFound,
}

var deadlineTable = Table[domain.Deadline]{
	Name:    "deadlines",
	Columns: []string{"id", "owner_id", "title", "due_date", "category", "priority", "status", "entity_id", "created_at"},
	Values: func(d *domain.Deadline) []any {
		return []any{d.ID, d.OwnerID, d.Title, d.DueDate, d.Category, string(d.Priority), string(d.Status), d.EntityID, d.CreatedAt}
	},
	Scan: func(row rowScanner) (domain.Deadline, error) {
		var (
			d                domain.Deadline
			priority, status string
			link             sql.NullString
		)
		if err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.DueDate, &d.Category, &priority, &status, &link, &d.CreatedAt); err != nil {
			return domain.Deadline{}, err
		}
		d.Priority = domain.Priority(priority)
		d.Status = domain.DeadlineStatus(status)
		d.EntityID = nullableString(link)
		return d, nil
	},
	NotFound: domain.ErrDeadlineNotFound,
}

var entityTable = Table[domain.Entity]{
	Name: "entities",
	Columns: []string{
		"id", "owner_id", "name", "type", "email", "phone", "pan", "aadhaar", "gstin",
		"business_type", "compliance_status", "risk_level", "created_at",
	},
	Values: func(e *domain.Entity) []any {
		return []any{
			e.ID, e.OwnerID, e.Name, string(e.Type), e.Email, e.Phone, e.PAN, e.Aadhaar, e.GSTIN,
			e.BusinessType, string(e.ComplianceStatus), string(e.RiskLevel), e.CreatedAt,
		}
	},
	Scan: func(row rowScanner) (domain.Entity, error) {
		var (
			e                                               domain.Entity
			kind, compliance, risk                          string
			email, phone, pan, aadhaar, gstin, businessType sql.NullString
		)
		err := row.Scan(
			&e.ID, &e.OwnerID, &e.Name, &kind, &email, &phone, &pan, &aadhaar, &gstin,
			&businessType, &compliance, &risk, &e.CreatedAt,
		)
		if err != nil {
			return domain.Entity{}, err
		}
		e.Type = domain.EntityType(kind)
		e.Email = nullableString(email)
		e.Phone = nullableString(phone)
		e.PAN = nullableString(pan)
		e.Aadhaar = nullableString(aadhaar)
		e.GSTIN = nullableString(gstin)
		e.BusinessType = nullableString(businessType)
		e.ComplianceStatus = domain.EntityCompliance(compliance)
		e.RiskLevel = domain.Priority(risk)
		return e, nil
	},
	NotFound: domain.ErrEntityNotFound,
}

var notificationTable = Table[domain.Notification]{
	Name:    "notifications",
	Columns: []string{"id", "owner_id", "title", "message", "type", "priority", "read", "action_url", "created_at"},
	Values: func(n *domain.Notification) []any {
		return []any{n.ID, n.OwnerID, n.Title, n.Message, n.Type, string(n.Priority), n.Read, n.ActionURL, n.CreatedAt}
	},
	Scan: func(row rowScanner) (domain.Notification, error) {
		var (
			n         domain.Notification
			priority  string
			actionURL sql.NullString
		)
		if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Message, &n.Type, &priority, &n.Read, &actionURL, &n.CreatedAt); err != nil {
			return domain.Notification{}, err
		}
		n.Priority = domain.Priority(priority)
		n.ActionURL = nullableString(actionURL)
		return n, nil
	},
	NotFound: domain.ErrNotificationNotFound,
}

var suggestionTable = Table[domain.AISuggestion]{
	Name:    "ai_suggestions",
	Columns: []string{"id", "owner_id", "title", "message", "type", "priority", "status", "action_taken", "created_at"},
	Values: func(s *domain.AISuggestion) []any {
		return []any{s.ID, s.OwnerID, s.Title, s.Message, s.Type, string(s.Priority), string(s.Status), s.ActionTaken, s.CreatedAt}
	},
	Scan: func(row rowScanner) (domain.AISuggestion, error) {
		var (
			s                domain.AISuggestion
			priority, status string
		)
		if err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Message, &s.Type, &priority, &status, &s.ActionTaken, &s.CreatedAt); err != nil {
			return domain.AISuggestion{}, err
		}
		s.Priority = domain.Priority(priority)
		s.Status = domain.SuggestionStatus(status)
		return s, nil
	},
	NotFound: domain.ErrSuggestionNotFound,
}

func NewDocumentStore(db *sql.DB) *Collection[domain.Document] {
	return NewCollection(db, documentTable)
}

func NewDeadlineStore(db *sql.DB) *Collection[domain.Deadline] {
	return NewCollection(db, deadlineTable)
}

func NewEntityStore(db *sql.DB) *Collection[domain.Entity] {
	return NewCollection(db, entityTable)
}

func NewNotificationStore(db *sql.DB) *Collection[domain.Notification] {
	return NewCollection(db, notificationTable)
}

func NewSuggestionStore(db *sql.DB) *Collection[domain.AISuggestion] {
	return NewCollection(db, suggestionTable)
}
