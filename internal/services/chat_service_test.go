package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

func newChatServiceFixture(t *testing.T) (*store.MemoryStore, *ChatService) {
	t.Helper()
	st := store.NewMemoryStore()
	matches := repository.NewMatchRepository(st)
	messages := repository.NewMessageRepository(st)
	users := repository.NewUserRepository(st)
	notifications := repository.NewNotificationRepository(st)
	notifier := NewNotifier(notifications, users, nil)
	return st, NewChatService(matches, messages, notifier)
}

func TestChatServiceGetThreadUnmatched(t *testing.T) {
	ctx := context.Background()
	_, svc := newChatServiceFixture(t)

	match, messages, err := svc.GetThread(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Nil(t, messages)
}

func TestChatServiceSendAndRead(t *testing.T) {
	ctx := context.Background()
	st, svc := newChatServiceFixture(t)
	matches := repository.NewMatchRepository(st)
	_, err := matches.CreateMatch(ctx, "req1", "vol1", time.Now())
	require.NoError(t, err)

	sent, err := svc.SendMessage(ctx, "req1", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", sent.Text)

	// The counterpart got a feed notification
	notifications := repository.NewNotificationRepository(st)
	items, err := notifications.ListByUser(ctx, "vol1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/chat", items[0].Link)

	// The sender re-opening the thread does not read their own message
	_, msgs, err := svc.GetThread(ctx, "req1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Read)

	// The receiver opening the thread reads it
	_, msgs, err = svc.GetThread(ctx, "vol1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)

	stored, err := repository.NewMessageRepository(st).ListThread(ctx, "req1")
	require.NoError(t, err)
	assert.True(t, stored[0].Read)
}

func TestChatServiceSendValidation(t *testing.T) {
	ctx := context.Background()
	st, svc := newChatServiceFixture(t)

	_, err := svc.SendMessage(ctx, "req1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.SendMessage(ctx, "req1", "hello")
	assert.ErrorIs(t, err, ErrNoCounterpart)

	matches := repository.NewMatchRepository(st)
	_, err = matches.CreateMatch(ctx, "req1", "vol1", time.Now())
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "req1", "hello")
	assert.NoError(t, err)
}

func TestChatServiceSetTyping(t *testing.T) {
	ctx := context.Background()
	st, svc := newChatServiceFixture(t)

	assert.ErrorIs(t, svc.SetTyping(ctx, "req1", true), ErrNotMatched)

	matches := repository.NewMatchRepository(st)
	_, err := matches.CreateMatch(ctx, "req1", "vol1", time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.SetTyping(ctx, "vol1", true))
	match, err := matches.GetMatchByRequester(ctx, "req1")
	require.NoError(t, err)
	assert.True(t, match.IsTyping("vol1"))
	assert.False(t, match.IsTyping("req1"))

	require.NoError(t, svc.SetTyping(ctx, "vol1", false))
	match, err = matches.GetMatchByRequester(ctx, "req1")
	require.NoError(t, err)
	assert.False(t, match.IsTyping("vol1"))
}
