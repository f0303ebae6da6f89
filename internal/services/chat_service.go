package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
)

// ChatService is the request-scoped face of the chat: where ChatSynchronizer
// maintains live subscriptions for a connected client, ChatService serves the
// one-shot HTTP operations with the same semantics.
type ChatService struct {
	matches  *repository.MatchRepository
	messages *repository.MessageRepository
	notifier *Notifier
}

// NewChatService creates the chat service. notifier may be nil.
func NewChatService(matches *repository.MatchRepository, messages *repository.MessageRepository, notifier *Notifier) *ChatService {
	return &ChatService{
		matches:  matches,
		messages: messages,
		notifier: notifier,
	}
}

// GetThread returns the user's match and thread, flagging incoming unread
// messages read — opening the thread is what reads it. Unmatched users get
// (nil, nil, nil).
func (s *ChatService) GetThread(ctx context.Context, userID string) (*models.Match, []models.Message, error) {
	match, err := s.matches.GetMatchForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if match == nil {
		return nil, nil, nil
	}

	messages, err := s.messages.ListThread(ctx, match.RequesterID)
	if err != nil {
		return nil, nil, err
	}

	var unreadIncoming []string
	for i, msg := range messages {
		if msg.SenderID != userID && !msg.Read {
			unreadIncoming = append(unreadIncoming, msg.MessageID)
			messages[i].Read = true
		}
	}
	if len(unreadIncoming) > 0 {
		if err := s.messages.MarkRead(ctx, match.RequesterID, unreadIncoming); err != nil {
			log.WithError(err).WithField("userId", userID).Error("marking thread read failed")
		}
	}
	return match, messages, nil
}

// SendMessage appends a message to the user's thread, clears their typing
// flag and notifies the counterpart. Empty text is rejected before any write.
func (s *ChatService) SendMessage(ctx context.Context, userID, text string) (*models.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	match, err := s.matches.GetMatchForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if match == nil || match.CounterpartOf(userID) == "" {
		return nil, ErrNoCounterpart
	}

	messageID, err := s.messages.AddMessage(ctx, match.RequesterID, userID, trimmed)
	if err != nil {
		return nil, err
	}

	if err := s.matches.SetTyping(ctx, match.RequesterID, userID, false); err != nil {
		log.WithError(err).WithField("userId", userID).Warn("clearing typing flag after send failed")
	}

	if s.notifier != nil {
		counterpart := match.CounterpartOf(userID)
		if err := s.notifier.Notify(ctx, counterpart, "New message", "/chat"); err != nil {
			log.WithError(err).WithField("userId", counterpart).Error("message notification failed")
		}
	}

	return &models.Message{
		MessageID: messageID,
		SenderID:  userID,
		Text:      trimmed,
	}, nil
}

// SetTyping writes the user's typing flag on their match record
func (s *ChatService) SetTyping(ctx context.Context, userID string, typing bool) error {
	match, err := s.matches.GetMatchForUser(ctx, userID)
	if err != nil {
		return err
	}
	if match == nil {
		return ErrNotMatched
	}
	return s.matches.SetTyping(ctx, match.RequesterID, userID, typing)
}
