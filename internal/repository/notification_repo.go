package repository

import (
	"context"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

const notificationsCollection = "notifications"

type NotificationRepository struct {
	store store.Store
}

func NewNotificationRepository(st store.Store) *NotificationRepository {
	return &NotificationRepository{store: st}
}

// CreateNotification writes a notification with a server-assigned creation time
func (r *NotificationRepository) CreateNotification(ctx context.Context, userID, message, link string) (string, error) {
	return r.store.Add(ctx, notificationsCollection, store.Fields{
		"userId":    userID,
		"message":   message,
		"link":      link,
		"createdAt": store.ServerTimestamp,
		"read":      false,
	})
}

// ListByUser returns the user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: notificationsCollection,
		OrderBy:    "createdAt",
		Desc:       true,
	}.Where("userId", "==", userID))
	if err != nil {
		return nil, err
	}
	return decodeNotifications(snaps), nil
}

// SubscribeByUser listens to the user's notifications, newest first
func (r *NotificationRepository) SubscribeByUser(ctx context.Context, userID string, fn func([]models.Notification), errFn store.ErrHandler) (store.Subscription, error) {
	q := store.Query{
		Collection: notificationsCollection,
		OrderBy:    "createdAt",
		Desc:       true,
	}.Where("userId", "==", userID)
	return r.store.SubscribeQuery(ctx, q, func(snaps []store.Snapshot) {
		fn(decodeNotifications(snaps))
	}, errFn)
}

// MarkRead flips the read flag on the given notifications in one atomic batch
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationIDs []string) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	ops := make([]store.Op, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		ops = append(ops, store.Op{
			Kind:    store.OpUpdate,
			Path:    notificationsCollection + "/" + id,
			Updates: []store.Update{{Path: "read", Value: true}},
		})
	}
	return r.store.BatchWrite(ctx, ops)
}

// DeleteAll removes the given notifications in one atomic batch
func (r *NotificationRepository) DeleteAll(ctx context.Context, notificationIDs []string) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	ops := make([]store.Op, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		ops = append(ops, store.Op{
			Kind: store.OpDelete,
			Path: notificationsCollection + "/" + id,
		})
	}
	return r.store.BatchWrite(ctx, ops)
}

func decodeNotifications(snaps []store.Snapshot) []models.Notification {
	notifications := make([]models.Notification, 0, len(snaps))
	for _, snap := range snaps {
		var n models.Notification
		if err := snap.DataTo(&n); err != nil {
			continue
		}
		n.NotificationID = snap.ID
		notifications = append(notifications, n)
	}
	return notifications
}
