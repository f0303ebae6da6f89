package repository

import (
	"context"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

// MessageRepository stores chat messages. A thread lives under the match key,
// i.e. the requester id: chats/{requesterId}/messages.
type MessageRepository struct {
	store store.Store
}

func NewMessageRepository(st store.Store) *MessageRepository {
	return &MessageRepository{store: st}
}

func threadCollection(requesterID string) string {
	return "chats/" + requesterID + "/messages"
}

// AddMessage appends a message to the thread with a server-assigned timestamp
func (r *MessageRepository) AddMessage(ctx context.Context, requesterID, senderID, text string) (string, error) {
	return r.store.Add(ctx, threadCollection(requesterID), store.Fields{
		"senderId":  senderID,
		"text":      text,
		"timestamp": store.ServerTimestamp,
		"read":      false,
	})
}

// ListThread returns the full thread ordered by timestamp ascending
func (r *MessageRepository) ListThread(ctx context.Context, requesterID string) ([]models.Message, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: threadCollection(requesterID),
		OrderBy:    "timestamp",
	})
	if err != nil {
		return nil, err
	}
	return decodeMessages(snaps), nil
}

// SubscribeThread listens to the thread ordered by timestamp ascending
func (r *MessageRepository) SubscribeThread(ctx context.Context, requesterID string, fn func([]models.Message), errFn store.ErrHandler) (store.Subscription, error) {
	q := store.Query{Collection: threadCollection(requesterID), OrderBy: "timestamp"}
	return r.store.SubscribeQuery(ctx, q, func(snaps []store.Snapshot) {
		fn(decodeMessages(snaps))
	}, errFn)
}

// MarkRead flips the read flag on the given messages in one atomic batch
func (r *MessageRepository) MarkRead(ctx context.Context, requesterID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	ops := make([]store.Op, 0, len(messageIDs))
	for _, id := range messageIDs {
		ops = append(ops, store.Op{
			Kind:    store.OpUpdate,
			Path:    threadCollection(requesterID) + "/" + id,
			Updates: []store.Update{{Path: "read", Value: true}},
		})
	}
	return r.store.BatchWrite(ctx, ops)
}

func decodeMessages(snaps []store.Snapshot) []models.Message {
	messages := make([]models.Message, 0, len(snaps))
	for _, snap := range snaps {
		var msg models.Message
		if err := snap.DataTo(&msg); err != nil {
			continue
		}
		msg.MessageID = snap.ID
		messages = append(messages, msg)
	}
	return messages
}
