package usecase

import (
	"context"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

// cachedQuery serves a view query from the cache, loading and storing it on a miss.
// Failed loads are not cached, nor are loads overtaken by an invalidation.
func cachedQuery[T any](
	ctx context.Context,
	cache ports.QueryCache,
	owner, name string,
	load func(context.Context) (T, error),
) (T, error) {
	key := domain.QueryKey{Owner: owner, Name: name}
	var token uint64
	if cache != nil {
		if hit, ok := cache.Get(key); ok {
			if value, ok := hit.(T); ok {
				return value, nil
			}
		}
		token = cache.Reserve(key)
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if cache != nil {
		cache.Set(key, value, token)
	}
	return value, nil
}

func invalidate(ctx context.Context, cache ports.QueryCache, owner string, names ...string) {
	if cache == nil || len(names) == 0 {
		return
	}
	cache.Invalidate(ctx, owner, names...)
}

// ownedBy scopes a predicate to the records of one user.
func ownedBy(user domain.User, where domain.Predicate) domain.Predicate {
	out := domain.Predicate{"owner_id": user.ID}
	for k, v := range where {
		out[k] = v
	}
	return out
}
