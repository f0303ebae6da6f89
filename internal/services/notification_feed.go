package services

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

// FeedHandlers surface feed state to the caller. Handlers may be nil.
type FeedHandlers struct {
	OnChange func([]models.Notification)
	OnError  func(error)
}

// SessionCheck returns the currently authenticated user id, "" when signed
// out. The feed re-checks it before committing bulk writes.
type SessionCheck func() string

// NotificationFeed maintains one live notification subscription per
// (user, role) pair. Changing either identity tears the previous
// subscription down before the new one is established; closing resets the
// local list.
type NotificationFeed struct {
	repo     *repository.NotificationRepository
	session  SessionCheck
	handlers FeedHandlers

	mu     sync.Mutex
	userID string
	role   models.Role
	sub    store.Subscription
	items  []models.Notification
}

func NewNotificationFeed(repo *repository.NotificationRepository, session SessionCheck, handlers FeedHandlers) *NotificationFeed {
	return &NotificationFeed{
		repo:     repo,
		session:  session,
		handlers: handlers,
	}
}

// Open subscribes the feed for the given identity, newest first. Reopening
// with the same (user, role) pair keeps the existing subscription.
func (f *NotificationFeed) Open(ctx context.Context, userID string, role models.Role) error {
	f.mu.Lock()
	if f.sub != nil && f.userID == userID && f.role == role {
		f.mu.Unlock()
		return nil
	}
	old := f.sub
	f.sub = nil
	f.userID = userID
	f.role = role
	f.items = nil
	f.mu.Unlock()

	if old != nil {
		old.Unsubscribe()
	}

	sub, err := f.repo.SubscribeByUser(ctx, userID, func(items []models.Notification) {
		f.mu.Lock()
		if f.userID != userID {
			f.mu.Unlock()
			return
		}
		f.items = items
		f.mu.Unlock()
		if f.handlers.OnChange != nil {
			f.handlers.OnChange(items)
		}
	}, func(err error) {
		log.WithError(err).WithField("userId", userID).Error("notification feed subscription error")
		if f.handlers.OnError != nil {
			f.handlers.OnError(err)
		}
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.userID != userID || f.role != role {
		f.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	f.sub = sub
	f.mu.Unlock()
	return nil
}

// Close tears the subscription down and resets the local list. Called on
// sign-out.
func (f *NotificationFeed) Close() {
	f.mu.Lock()
	old := f.sub
	f.sub = nil
	f.userID = ""
	f.role = ""
	f.items = nil
	f.mu.Unlock()
	if old != nil {
		old.Unsubscribe()
	}
}

// Items returns the currently loaded notifications
func (f *NotificationFeed) Items() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.items...)
}

// Unread counts the currently loaded unread notifications
func (f *NotificationFeed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAllRead flags every loaded unread notification read in a single atomic
// batch. If the session ended between the check and the commit the operation
// fails silently and is only logged.
func (f *NotificationFeed) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	userID := f.userID
	var unread []string
	for _, n := range f.items {
		if !n.Read {
			unread = append(unread, n.NotificationID)
		}
	}
	f.mu.Unlock()

	if len(unread) == 0 || userID == "" {
		return nil
	}
	if f.session != nil && f.session() != userID {
		log.WithField("userId", userID).Warn("skipping bulk mark-read, session ended")
		return nil
	}
	return f.repo.MarkRead(ctx, unread)
}

// ClearAll deletes every notification owned by the current user in one
// atomic batch and resets the local list on success.
func (f *NotificationFeed) ClearAll(ctx context.Context) error {
	f.mu.Lock()
	userID := f.userID
	f.mu.Unlock()
	if userID == "" {
		return nil
	}

	owned, err := f.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(owned))
	for _, n := range owned {
		ids = append(ids, n.NotificationID)
	}
	if err := f.repo.DeleteAll(ctx, ids); err != nil {
		return err
	}

	f.mu.Lock()
	if f.userID == userID {
		f.items = nil
	}
	f.mu.Unlock()
	return nil
}
