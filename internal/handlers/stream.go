package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/services"
)

// StreamHandler serves server-sent event streams for clients that hold a
// connection open instead of polling. Each connection owns its own chat
// synchronizer or notification feed, torn down when the client disconnects.
type StreamHandler struct {
	matches       *repository.MatchRepository
	messages      *repository.MessageRepository
	notifications *repository.NotificationRepository
	resolver      *services.RoleResolver
	tokens        *services.TokenStore
}

func NewStreamHandler(matches *repository.MatchRepository, messages *repository.MessageRepository, notifications *repository.NotificationRepository, resolver *services.RoleResolver, tokens *services.TokenStore) *StreamHandler {
	return &StreamHandler{
		matches:       matches,
		messages:      messages,
		notifications: notifications,
		resolver:      resolver,
		tokens:        tokens,
	}
}

type streamEvent struct {
	name string
	data interface{}
}

// ChatStream streams the caller's live match and thread state: "match",
// "unmatched" and "thread" events as the underlying records change, plus
// "error" events for contained subscription failures.
func (h *StreamHandler) ChatStream(c *gin.Context) {
	userID := c.GetString("userID")

	events := make(chan streamEvent, 16)
	push := func(name string, data interface{}) {
		select {
		case events <- streamEvent{name: name, data: data}:
		default:
			// Client is not draining; drop rather than block the snapshot path.
		}
	}

	synchronizer := services.NewChatSynchronizer(h.matches, h.messages, userID, services.ChatHandlers{
		OnMatch:     func(m *models.Match) { push("match", m) },
		OnUnmatched: func() { push("unmatched", gin.H{"matched": false}) },
		OnThread:    func(msgs []models.Message) { push("thread", msgs) },
		OnError:     func(err error) { push("error", gin.H{"error": err.Error()}) },
	})
	if err := synchronizer.Start(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer synchronizer.Stop()

	streamEvents(c, events)
}

// NotificationStream resolves the caller's role, opens their notification
// feed and streams "notifications" events as the feed changes.
func (h *StreamHandler) NotificationStream(c *gin.Context) {
	userID := c.GetString("userID")
	token := c.GetString("token")

	resolution, err := h.resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrSessionEnded) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session ended"})
			return
		}
		if errors.Is(err, services.ErrStaleResolution) {
			c.JSON(http.StatusConflict, gin.H{"error": "identity changed, retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events := make(chan streamEvent, 16)
	push := func(name string, data interface{}) {
		select {
		case events <- streamEvent{name: name, data: data}:
		default:
		}
	}

	session := func() string {
		id, ok := h.tokens.GetUserID(token)
		if !ok {
			return ""
		}
		return id
	}
	feed := services.NewNotificationFeed(h.notifications, session, services.FeedHandlers{
		OnChange: func(items []models.Notification) { push("notifications", items) },
		OnError:  func(err error) { push("error", gin.H{"error": err.Error()}) },
	})
	if err := feed.Open(c.Request.Context(), userID, resolution.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer feed.Close()

	streamEvents(c, events)
}

// streamEvents writes buffered events as SSE until the client disconnects
func streamEvents(c *gin.Context, events <-chan streamEvent) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			c.SSEvent(ev.name, ev.data)
			c.Writer.Flush()
		}
	}
}
