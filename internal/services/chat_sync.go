package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

// TypingQuietPeriod is how long after the last input activity the typing
// flag is cleared.
const TypingQuietPeriod = 2000 * time.Millisecond

var (
	// ErrEmptyMessage is returned when a message is empty after trimming
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrNoCounterpart is returned when no match counterpart is resolved
	ErrNoCounterpart = errors.New("no match counterpart resolved")
)

// ChatHandlers surface synchronizer state to the caller. Any handler may be
// nil. OnError receives contained subscription failures; the synchronizer
// stays alive and the caller may retry by restarting it.
type ChatHandlers struct {
	OnMatch     func(*models.Match)
	OnUnmatched func()
	OnThread    func([]models.Message)
	OnError     func(error)
}

// ChatSynchronizer maintains, for one signed-in user, a live view of their
// match record and the associated message thread. On every match change it
// re-derives the counterpart and (re)establishes the thread subscription;
// incoming unread messages are flagged read; outgoing typing activity is
// debounced into at most one clearing write per quiet period.
type ChatSynchronizer struct {
	matches  *repository.MatchRepository
	messages *repository.MessageRepository
	handlers ChatHandlers
	userID   string
	quiet    time.Duration

	mu          sync.Mutex
	ctx         context.Context
	docMatch    *models.Match
	queryMatch  *models.Match
	counterpart string
	requesterID string
	matchSub    store.Subscription
	querySub    store.Subscription
	threadSub   store.Subscription
	typingTimer *time.Timer // nil while idle
	stopped     bool
}

func NewChatSynchronizer(matches *repository.MatchRepository, messages *repository.MessageRepository, userID string, handlers ChatHandlers) *ChatSynchronizer {
	return &ChatSynchronizer{
		matches:  matches,
		messages: messages,
		handlers: handlers,
		userID:   userID,
		quiet:    TypingQuietPeriod,
	}
}

// SetQuietPeriod overrides the typing quiet period. Call before Start; tests
// use it to shorten the debounce window.
func (c *ChatSynchronizer) SetQuietPeriod(d time.Duration) {
	if d > 0 {
		c.quiet = d
	}
}

// Start establishes the match subscriptions. The user's side is not known in
// advance: the requester side is the document keyed by their own id, the
// volunteer side a query on volunteerId. At most one of the two ever carries
// a match for a given user.
func (c *ChatSynchronizer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return errors.New("synchronizer already stopped")
	}
	c.ctx = ctx
	c.mu.Unlock()

	matchSub, err := c.matches.SubscribeByRequester(ctx, c.userID, c.onDocSnapshot, c.onSubscriptionError)
	if err != nil {
		return err
	}
	querySub, err := c.matches.SubscribeByVolunteer(ctx, c.userID, c.onQuerySnapshot, c.onSubscriptionError)
	if err != nil {
		matchSub.Unsubscribe()
		return err
	}

	c.mu.Lock()
	c.matchSub = matchSub
	c.querySub = querySub
	c.mu.Unlock()
	return nil
}

// Stop tears down every subscription and clears a pending typing flag
func (c *ChatSynchronizer) Stop() {
	c.mu.Lock()
	c.stopped = true
	subs := []store.Subscription{c.matchSub, c.querySub, c.threadSub}
	c.matchSub, c.querySub, c.threadSub = nil, nil, nil
	timer := c.typingTimer
	c.typingTimer = nil
	requesterID := c.requesterID
	ctx := c.ctx
	c.mu.Unlock()

	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	if timer != nil && timer.Stop() && requesterID != "" {
		if err := c.matches.SetTyping(ctx, requesterID, c.userID, false); err != nil {
			log.WithError(err).WithField("userId", c.userID).Warn("clearing typing flag on stop failed")
		}
	}
}

// SendMessage appends a trimmed, non-empty message to the thread with a
// server-assigned timestamp and clears the sender's typing flag. Empty text
// or an unresolved counterpart is a rejected no-op.
func (c *ChatSynchronizer) SendMessage(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	requesterID := c.requesterID
	counterpart := c.counterpart
	timer := c.typingTimer
	c.typingTimer = nil
	c.mu.Unlock()

	if counterpart == "" {
		return ErrNoCounterpart
	}

	if _, err := c.messages.AddMessage(ctx, requesterID, c.userID, trimmed); err != nil {
		return err
	}

	// Sending ends composition: cancel the pending debounce and clear the flag
	if timer != nil {
		timer.Stop()
	}
	if err := c.matches.SetTyping(ctx, requesterID, c.userID, false); err != nil {
		log.WithError(err).WithField("userId", c.userID).Warn("clearing typing flag after send failed")
	}
	return nil
}

// NotifyTyping records input activity: the typing flag and last-typing
// timestamp are written, and the clearing write is scheduled for one quiet
// period after the most recent activity. Each call resets the timer, so a
// burst of activity produces exactly one clearing write.
func (c *ChatSynchronizer) NotifyTyping(ctx context.Context) error {
	c.mu.Lock()
	requesterID := c.requesterID
	counterpart := c.counterpart
	c.mu.Unlock()

	if counterpart == "" {
		return ErrNoCounterpart
	}

	if err := c.matches.SetTyping(ctx, requesterID, c.userID, true); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil
	}
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(c.quiet, func() { c.clearTyping(requesterID) })
	return nil
}

// clearTyping is the timer transition typing→idle
func (c *ChatSynchronizer) clearTyping(requesterID string) {
	c.mu.Lock()
	c.typingTimer = nil
	stopped := c.stopped
	ctx := c.ctx
	c.mu.Unlock()
	if stopped {
		return
	}
	if err := c.matches.SetTyping(ctx, requesterID, c.userID, false); err != nil {
		log.WithError(err).WithField("userId", c.userID).Warn("clearing typing flag failed")
	}
}

func (c *ChatSynchronizer) onDocSnapshot(snap store.Snapshot) {
	var match *models.Match
	if snap.Exists {
		var m models.Match
		if err := snap.DataTo(&m); err != nil {
			c.onSubscriptionError(err)
			return
		}
		m.MatchID = snap.ID
		match = &m
	}
	c.mu.Lock()
	c.docMatch = match
	c.mu.Unlock()
	c.recompute()
}

func (c *ChatSynchronizer) onQuerySnapshot(snaps []store.Snapshot) {
	var match *models.Match
	if len(snaps) > 0 {
		var m models.Match
		if err := snaps[0].DataTo(&m); err != nil {
			c.onSubscriptionError(err)
			return
		}
		m.MatchID = snaps[0].ID
		match = &m
	}
	c.mu.Lock()
	c.queryMatch = match
	c.mu.Unlock()
	c.recompute()
}

// recompute merges the two match sources, re-derives the counterpart and
// swaps the thread subscription when it changed.
func (c *ChatSynchronizer) recompute() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	match := c.docMatch
	if match == nil {
		match = c.queryMatch
	}

	var (
		oldThread   = c.threadSub
		resubscribe bool
		ctx         = c.ctx
	)

	if match == nil {
		c.counterpart = ""
		c.requesterID = ""
		c.threadSub = nil
		c.mu.Unlock()

		if oldThread != nil {
			oldThread.Unsubscribe()
		}
		if c.handlers.OnUnmatched != nil {
			c.handlers.OnUnmatched()
		}
		return
	}

	counterpart := match.CounterpartOf(c.userID)
	if counterpart != c.counterpart || match.RequesterID != c.requesterID {
		c.counterpart = counterpart
		c.requesterID = match.RequesterID
		c.threadSub = nil
		resubscribe = counterpart != ""
	} else {
		oldThread = nil
	}
	requesterID := c.requesterID
	c.mu.Unlock()

	if oldThread != nil {
		oldThread.Unsubscribe()
	}
	if c.handlers.OnMatch != nil {
		c.handlers.OnMatch(match)
	}
	if !resubscribe {
		return
	}

	threadSub, err := c.messages.SubscribeThread(ctx, requesterID, func(msgs []models.Message) {
		c.onThread(ctx, requesterID, msgs)
	}, c.onSubscriptionError)
	if err != nil {
		c.onSubscriptionError(err)
		return
	}

	c.mu.Lock()
	if c.stopped || c.requesterID != requesterID {
		c.mu.Unlock()
		threadSub.Unsubscribe()
		return
	}
	c.threadSub = threadSub
	c.mu.Unlock()
}

// onThread delivers the thread to the caller and flags incoming unread
// messages as read. The read-check guard keeps re-delivery of an already
// handled snapshot from issuing redundant writes.
func (c *ChatSynchronizer) onThread(ctx context.Context, requesterID string, msgs []models.Message) {
	if c.handlers.OnThread != nil {
		c.handlers.OnThread(msgs)
	}

	var unreadIncoming []string
	for _, msg := range msgs {
		if msg.SenderID != c.userID && !msg.Read {
			unreadIncoming = append(unreadIncoming, msg.MessageID)
		}
	}
	if len(unreadIncoming) == 0 {
		return
	}
	if err := c.messages.MarkRead(ctx, requesterID, unreadIncoming); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userId": c.userID,
			"count":  len(unreadIncoming),
		}).Error("marking messages read failed")
		c.onSubscriptionError(err)
	}
}

func (c *ChatSynchronizer) onSubscriptionError(err error) {
	log.WithError(err).WithField("userId", c.userID).Error("chat synchronizer subscription error")
	if c.handlers.OnError != nil {
		c.handlers.OnError(err)
	}
}
