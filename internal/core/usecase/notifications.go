package usecase

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const markAllReadConcurrency = 4

type NotificationUseCase struct {
	notifications ports.NotificationStore
	cache         ports.QueryCache
}

func NewNotificationUseCase(notifications ports.NotificationStore, cache ports.QueryCache) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, cache: cache}
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, user domain.User, filter domain.ReadFilter) ([]domain.Notification, error) {
	all, err := cachedQuery(ctx, uc.cache, user.ID, domain.QueryNotifications, func(ctx context.Context) ([]domain.Notification, error) {
		return uc.notifications.Filter(ctx, ownedBy(user, nil), "-created_at", listLimit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(all))
	for _, n := range all {
		if filter.Match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (uc *NotificationUseCase) UnreadCount(ctx context.Context, user domain.User) (int, error) {
	unread, err := uc.unread(ctx, user)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, user domain.User, id string) error {
	current, err := findOwned(ctx, uc.notifications, user, id, domain.ErrNotificationNotFound)
	if err != nil {
		return err
	}
	if err := uc.notifications.Update(ctx, current.ID, domain.Patch{"read": true}); err != nil {
		return err
	}
	invalidate(ctx, uc.cache, user.ID, domain.QueryNotifications, domain.QueryUnreadNotifications)
	return nil
}

// MarkAllRead marks every unread notification as read and returns how many were updated.
// Updates that succeeded stay applied when another one fails.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, user domain.User) (int, error) {
	unread, err := uc.unread(ctx, user)
	if err != nil {
		return 0, err
	}
	if len(unread) == 0 {
		return 0, nil
	}

	var marked atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(markAllReadConcurrency)
	for _, n := range unread {
		id := n.ID
		g.Go(func() error {
			if err := uc.notifications.Update(gctx, id, domain.Patch{"read": true}); err != nil {
				return err
			}
			marked.Add(1)
			return nil
		})
	}
	err = g.Wait()
	invalidate(ctx, uc.cache, user.ID, domain.QueryNotifications, domain.QueryUnreadNotifications)
	return int(marked.Load()), err
}

func (uc *NotificationUseCase) unread(ctx context.Context, user domain.User) ([]domain.Notification, error) {
	return cachedQuery(ctx, uc.cache, user.ID, domain.QueryUnreadNotifications, func(ctx context.Context) ([]domain.Notification, error) {
		return uc.notifications.Filter(ctx, ownedBy(user, domain.Predicate{"read": false}), "-created_at", listLimit)
	})
}
