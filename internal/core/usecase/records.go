package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const listLimit = 100

// findOwned loads one record by id, scoped to the user. A record owned by someone else is reported as missing.
func findOwned[T any](ctx context.Context, store ports.Collection[T], user domain.User, id string, notFound error) (*T, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "find record", fmt.Errorf("id is required"))
	}
	records, err := store.Filter(ctx, ownedBy(user, domain.Predicate{"id": id}), "", 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFound
	}
	return &records[0], nil
}

// checkPatch rejects empty patches and fields outside the editable set.
func checkPatch(op string, patch domain.Patch, editable ...string) error {
	if len(patch) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("patch is empty"))
	}
	allowed := make(map[string]struct{}, len(editable))
	for _, f := range editable {
		allowed[f] = struct{}{}
	}
	var rejected []string
	for field := range patch {
		if _, ok := allowed[field]; !ok {
			rejected = append(rejected, field)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("fields not editable: %s", strings.Join(rejected, ", ")))
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed.UTC(), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %v", v)
}
