package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type DocumentStatus string

const (
	DocumentStatusReady       DocumentStatus = "Ready"
	DocumentStatusProcessing  DocumentStatus = "Processing"
	DocumentStatusNeedsReview DocumentStatus = "Needs Review"
)

type ComplianceStatus string

const (
	ComplianceValid          ComplianceStatus = "Valid"
	ComplianceExpiringSoon   ComplianceStatus = "Expiring Soon"
	ComplianceExpired        ComplianceStatus = "Expired"
	ComplianceActionRequired ComplianceStatus = "Action Required"
)

const (
	UnknownDocumentType = "Unknown"
	Uncategorized       = "Uncategorized"
)

// DocumentCategories is the fixed set of categories offered to the AI and to list filters.
var DocumentCategories = []string{
	"Personal IDs",
	"Business Registrations",
	"Tax",
	"Legal",
	"HR",
	"Banking",
	"Insurance",
	"Compliance Notices",
	"Agreements",
}

// Document is a stored file plus the metadata derived from AI analysis.
// The AI-derived pointer fields are nil on degraded records.
type Document struct {
	ID               string            `json:"id"`
	OwnerID          string            `json:"owner_id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Category         string            `json:"category"`
	FileURL          string            `json:"file_url"`
	ExtractedFields  *string           `json:"extracted_fields,omitempty"`
	ComplianceStatus *ComplianceStatus `json:"compliance_status,omitempty"`
	ExpiryDate       *string           `json:"expiry_date,omitempty"`
	AINotes          *string           `json:"ai_notes,omitempty"`
	Status           DocumentStatus    `json:"status"`
	EntityID         *string           `json:"entity_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Fields decodes the serialized extracted fields. Absent or malformed data
// yields an empty map; it never fails.
func (d Document) Fields() map[string]any {
	fields, _ := ParseExtractedFields(d.ExtractedFields)
	return fields
}

// HasFields reports whether the document carries at least one readable extracted field.
func (d Document) HasFields() bool {
	return len(d.Fields()) > 0
}

// ParseExtractedFields decodes stored extracted fields, reporting whether the
// payload was valid. The returned map is never nil.
func ParseExtractedFields(raw *string) (map[string]any, bool) {
	out := map[string]any{}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return out, true
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(*raw), &decoded); err != nil || decoded == nil {
		return out, false
	}
	return decoded, true
}

// DocumentListFilter narrows an already fetched document list the way the documents page does.
type DocumentListFilter struct {
	Search   string
	Category string
	Status   string
}

func (f DocumentListFilter) Match(doc Document) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search != "" &&
		!strings.Contains(strings.ToLower(doc.Name), search) &&
		!strings.Contains(strings.ToLower(doc.Type), search) {
		return false
	}
	if !isAll(f.Category) && doc.Category != f.Category {
		return false
	}
	if !isAll(f.Status) && string(doc.Status) != f.Status {
		return false
	}
	return true
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// DocumentDetail is the read model of the document details page.
type DocumentDetail struct {
	Document        Document       `json:"document"`
	Fields          map[string]any `json:"fields"`
	FieldsAvailable bool           `json:"fields_available"`
}

func NewDocumentDetail(doc Document) DocumentDetail {
	fields := doc.Fields()
	return DocumentDetail{
		Document:        doc,
		Fields:          fields,
		FieldsAvailable: len(fields) > 0,
	}
}

func StringPtr(v string) *string { return &v }
