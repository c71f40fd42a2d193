package usecase

import (
	"context"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

type DocumentQueryUseCase struct {
	docs  ports.DocumentStore
	cache ports.QueryCache
}

func NewDocumentQueryUseCase(docs ports.DocumentStore, cache ports.QueryCache) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{docs: docs, cache: cache}
}

func (uc *DocumentQueryUseCase) ListDocuments(ctx context.Context, user domain.User, filter domain.DocumentListFilter) ([]domain.Document, error) {
	all, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryAllDocuments, func(ctx context.Context) ([]domain.Document, error) {
		return uc.docs.Filter(ctx, ownedBy(user, nil), "-created_at", listLimit)
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Document, 0, len(all))
	for _, doc := range all {
		if filter.Match(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (uc *DocumentQueryUseCase) GetDocument(ctx context.Context, user domain.User, id string) (*domain.DocumentDetail, error) {
	doc, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryDocument(id), func(ctx context.Context) (*domain.Document, error) {
		return findOwned(ctx, uc.docs, user, id, domain.ErrDocumentNotFound)
	})
	if err != nil {
		return nil, err
	}
	detail := domain.NewDocumentDetail(*doc)
	return &detail, nil
}
