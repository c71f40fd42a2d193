package domain

import (
	"strings"
	"time"
)

type EntityType string

const (
	EntityTypePerson   EntityType = "Person"
	EntityTypeBusiness EntityType = "Business"
)

type EntityCompliance string

const (
	EntityCompliant    EntityCompliance = "Compliant"
	EntityAtRisk       EntityCompliance = "At Risk"
	EntityNonCompliant EntityCompliance = "Non-Compliant"
)

// Entity is a person or business tracked for compliance.
type Entity struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"owner_id"`
	Name             string           `json:"name"`
	Type             EntityType       `json:"type"`
	Email            *string          `json:"email,omitempty"`
	Phone            *string          `json:"phone,omitempty"`
	PAN              *string          `json:"pan,omitempty"`
	Aadhaar          *string          `json:"aadhaar,omitempty"`
	GSTIN            *string          `json:"gstin,omitempty"`
	BusinessType     *string          `json:"business_type,omitempty"`
	ComplianceStatus EntityCompliance `json:"compliance_status"`
	RiskLevel        Priority         `json:"risk_level"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Validate checks the fields a new or edited entity must carry.
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return WrapError(ErrInvalidInput, "validate entity", errString("name is required"))
	}
	switch e.Type {
	case EntityTypePerson:
		if e.GSTIN != nil || e.BusinessType != nil {
			return WrapError(ErrInvalidInput, "validate entity", errString("gstin and business_type apply to businesses only"))
		}
	case EntityTypeBusiness:
		if e.Aadhaar != nil {
			return WrapError(ErrInvalidInput, "validate entity", errString("aadhaar applies to persons only"))
		}
	default:
		return WrapError(ErrInvalidInput, "validate entity", errString("type must be Person or Business"))
	}
	return nil
}

type EntityListFilter struct {
	Search string
	Type   string
}

func (f EntityListFilter) Match(e Entity) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search != "" {
		inName := strings.Contains(strings.ToLower(e.Name), search)
		inEmail := e.Email != nil && strings.Contains(strings.ToLower(*e.Email), search)
		if !inName && !inEmail {
			return false
		}
	}
	return isAll(f.Type) || string(e.Type) == f.Type
}

// EntityDetail is the read model of the entity page.
type EntityDetail struct {
	Entity    Entity         `json:"entity"`
	Documents []Document     `json:"documents"`
	Deadlines []DeadlineView `json:"deadlines"`
}

type errString string

func (e errString) Error() string { return string(e) }
