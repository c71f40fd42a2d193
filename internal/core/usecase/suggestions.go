package usecase

import (
	"context"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

type SuggestionUseCase struct {
	suggestions ports.SuggestionStore
	cache       ports.QueryCache
}

func NewSuggestionUseCase(suggestions ports.SuggestionStore, cache ports.QueryCache) *SuggestionUseCase {
	return &SuggestionUseCase{suggestions: suggestions, cache: cache}
}

func (uc *SuggestionUseCase) Dismiss(ctx context.Context, user domain.User, id string) error {
	return uc.resolve(ctx, user, id, domain.Patch{"status": string(domain.SuggestionDismissed)})
}

func (uc *SuggestionUseCase) Action(ctx context.Context, user domain.User, id string) error {
	return uc.resolve(ctx, user, id, domain.Patch{
		"status":       string(domain.SuggestionActioned),
		"action_taken": true,
	})
}

func (uc *SuggestionUseCase) resolve(ctx context.Context, user domain.User, id string, patch domain.Patch) error {
	current, err := findOwned(ctx, uc.suggestions, user, id, domain.ErrSuggestionNotFound)
	if err != nil {
		return err
	}
	if err := uc.suggestions.Update(ctx, current.ID, patch); err != nil {
		return err
	}
	invalidate(ctx, uc.cache, user.ID, domain.QueryAISuggestions)
	return nil
}
