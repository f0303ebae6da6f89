package services

import (
	"context"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
)

// Notifier writes notification documents and pushes them to the owner's
// device. Push delivery is best effort: a failed push is logged and never
// fails the notification itself.
type Notifier struct {
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	push          *expo.PushClient
}

// NewNotifier creates a notifier. push may be nil to disable device pushes.
func NewNotifier(notifications *repository.NotificationRepository, users *repository.UserRepository, push *expo.PushClient) *Notifier {
	return &Notifier{
		notifications: notifications,
		users:         users,
		push:          push,
	}
}

// Notify stores a notification for the user and pushes it to their device
func (n *Notifier) Notify(ctx context.Context, userID, message, link string) error {
	if _, err := n.notifications.CreateNotification(ctx, userID, message, link); err != nil {
		return err
	}
	n.pushToUser(ctx, userID, message)
	return nil
}

// BroadcastEventPublished notifies every approved user about a new event
func (n *Notifier) BroadcastEventPublished(ctx context.Context, event *models.Event) error {
	users, err := n.users.ListApproved(ctx)
	if err != nil {
		return err
	}
	message := "New event: " + event.Name
	link := "/events/" + event.EventID
	for _, user := range users {
		if err := n.Notify(ctx, user.UserID, message, link); err != nil {
			log.WithError(err).WithField("userId", user.UserID).Error("event notification failed")
		}
	}
	return nil
}

func (n *Notifier) pushToUser(ctx context.Context, userID, message string) {
	if n.push == nil {
		return
	}

	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil || user.ExpoToken == "" {
		return
	}

	token, err := expo.NewExponentPushToken(user.ExpoToken)
	if err != nil {
		log.WithField("userId", userID).Error("invalid expo token")
		return
	}

	response, err := n.push.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Body:     message,
		Sound:    "default",
		Title:    "Sihot Mehalev",
		Priority: expo.DefaultPriority,
	})
	if err != nil {
		log.WithError(err).WithField("userId", userID).Error("push publish failed")
		return
	}
	if response.ValidateResponse() != nil {
		log.WithField("userId", userID).Error("push rejected by expo")
	}
}
