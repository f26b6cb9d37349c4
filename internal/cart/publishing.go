package cart

import (
	"context"
	"log"
)

// ChangeNotifier announces that a user's persisted cart changed.
type ChangeNotifier interface {
	NotifyCartChanged(ctx context.Context, userID string) error
}

// ChangeSubscriber delivers change notifications for one user until unsubscribe is called.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, userID string, onChange func()) (unsubscribe func(), err error)
}

type notifyingRepository struct {
	Repository
	notifier ChangeNotifier
	logger   *log.Logger
}

// WithChangeNotifications wraps repo so every successful write is announced through n.
// A failed announcement is logged; the write itself already happened.
func WithChangeNotifications(repo Repository, n ChangeNotifier, logger *log.Logger) Repository {
	return &notifyingRepository{Repository: repo, notifier: n, logger: logger}
}

func (r *notifyingRepository) notify(ctx context.Context, userID string, err error) error {
	if err != nil {
		return err
	}
	if nerr := r.notifier.NotifyCartChanged(ctx, userID); nerr != nil {
		r.logger.Printf("publish cart change for %s: %v", userID, nerr)
	}
	return nil
}

func (r *notifyingRepository) AddQuantity(ctx context.Context, userID, productID, size string, quantity int) error {
	return r.notify(ctx, userID, r.Repository.AddQuantity(ctx, userID, productID, size, quantity))
}

func (r *notifyingRepository) SetQuantity(ctx context.Context, userID, productID, size string, quantity int) error {
	return r.notify(ctx, userID, r.Repository.SetQuantity(ctx, userID, productID, size, quantity))
}

func (r *notifyingRepository) Delete(ctx context.Context, userID, productID, size string) error {
	return r.notify(ctx, userID, r.Repository.Delete(ctx, userID, productID, size))
}

func (r *notifyingRepository) DeleteAll(ctx context.Context, userID string) error {
	return r.notify(ctx, userID, r.Repository.DeleteAll(ctx, userID))
}

func (r *notifyingRepository) MoveSize(ctx context.Context, userID, productID, fromSize, toSize string, quantity int) error {
	return r.notify(ctx, userID, r.Repository.MoveSize(ctx, userID, productID, fromSize, toSize, quantity))
}
