package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const (
	entityDocumentsLimit = 20
	entityDeadlinesLimit = 10
)

var editableEntityFields = []string{
	"name", "type", "email", "phone", "pan", "aadhaar", "gstin",
	"business_type", "compliance_status", "risk_level",
}

type EntityUseCase struct {
	entities  ports.EntityStore
	docs      ports.DocumentStore
	deadlines ports.DeadlineStore
	cache     ports.QueryCache
	now       func() time.Time
}

func NewEntityUseCase(
	entities ports.EntityStore,
	docs ports.DocumentStore,
	deadlines ports.DeadlineStore,
	cache ports.QueryCache,
) *EntityUseCase {
	return &EntityUseCase{
		entities:  entities,
		docs:      docs,
		deadlines: deadlines,
		cache:     cache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *EntityUseCase) ListEntities(ctx context.Context, user domain.User, filter domain.EntityListFilter) ([]domain.Entity, error) {
	all, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryEntities, func(ctx context.Context) ([]domain.Entity, error) {
		return uc.entities.Filter(ctx, ownedBy(user, nil), "-created_at", listLimit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entity, 0, len(all))
	for _, e := range all {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetEntity returns the entity with the documents and deadlines linked to it.
func (uc *EntityUseCase) GetEntity(ctx context.Context, user domain.User, id string) (*domain.EntityDetail, error) {
	entity, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryEntity(id), func(ctx context.Context) (*domain.Entity, error) {
		return findOwned(ctx, uc.entities, user, id, domain.ErrEntityNotFound)
	})
	if err != nil {
		return nil, err
	}

	docs, err := uc.docs.Filter(ctx, ownedBy(user, domain.Predicate{"entity_id": entity.ID}), "-created_at", entityDocumentsLimit)
	if err != nil {
		return nil, err
	}
	deadlines, err := uc.deadlines.Filter(ctx, ownedBy(user, domain.Predicate{"entity_id": entity.ID}), "due_date", entityDeadlinesLimit)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	views := make([]domain.DeadlineView, 0, len(deadlines))
	for _, d := range deadlines {
		views = append(views, domain.NewDeadlineView(d, now))
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return &domain.EntityDetail{Entity: *entity, Documents: docs, Deadlines: views}, nil
}

func (uc *EntityUseCase) CreateEntity(ctx context.Context, user domain.User, entity domain.Entity) (*domain.Entity, error) {
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	entity.ID = uuid.NewString()
	entity.OwnerID = user.ID
	entity.CreatedAt = uc.now()
	if entity.ComplianceStatus == "" {
		entity.ComplianceStatus = domain.EntityCompliant
	}
	if entity.RiskLevel == "" {
		entity.RiskLevel = domain.PriorityLow
	}

	if err := uc.entities.Create(ctx, &entity); err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, user.ID, domain.QueryEntities)
	return &entity, nil
}

func (uc *EntityUseCase) UpdateEntity(ctx context.Context, user domain.User, id string, patch domain.Patch) error {
	if err := checkPatch("update entity", patch, editableEntityFields...); err != nil {
		return err
	}
	current, err := findOwned(ctx, uc.entities, user, id, domain.ErrEntityNotFound)
	if err != nil {
		return err
	}
	if err := applyEntityPatch(*current, patch).Validate(); err != nil {
		return err
	}

	if err := uc.entities.Update(ctx, current.ID, patch); err != nil {
		return err
	}
	invalidate(ctx, uc.cache, user.ID, domain.QueryEntities, domain.QueryEntity(current.ID))
	return nil
}

// applyEntityPatch previews an edit so the result can be validated before it is stored.
func applyEntityPatch(e domain.Entity, patch domain.Patch) domain.Entity {
	str := func(v any) string {
		s, _ := v.(string)
		return s
	}
	ptr := func(v any) *string {
		if s, ok := v.(string); ok {
			return &s
		}
		return nil
	}
	for field, v := range patch {
		switch field {
		case "name":
			e.Name = str(v)
		case "type":
			e.Type = domain.EntityType(str(v))
		case "email":
			e.Email = ptr(v)
		case "phone":
			e.Phone = ptr(v)
		case "pan":
			e.PAN = ptr(v)
		case "aadhaar":
			e.Aadhaar = ptr(v)
		case "gstin":
			e.GSTIN = ptr(v)
		case "business_type":
			e.BusinessType = ptr(v)
		}
	}
	return e
}
