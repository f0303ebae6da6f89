package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/services"
)

type ChatHandler struct {
	chatService  *services.ChatService
	matchService *services.MatchService
}

func NewChatHandler(chatService *services.ChatService, matchService *services.MatchService) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		matchService: matchService,
	}
}

// GetThread returns the caller's match and message thread. Opening the
// thread marks incoming messages read. Unmatched users get matched=false.
func (h *ChatHandler) GetThread(c *gin.Context) {
	userID := c.GetString("userID")

	match, messages, err := h.chatService.GetThread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"matched": false})
		return
	}

	counterpart := match.CounterpartOf(userID)
	c.JSON(http.StatusOK, gin.H{
		"matched":           true,
		"match":             match,
		"messages":          messages,
		"counterpartTyping": match.IsTyping(counterpart),
	})
}

// SendMessage appends a message to the caller's thread
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), userID, req.Text)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) || errors.Is(err, services.ErrNoCounterpart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, message)
}

// Typing sets or clears the caller's typing flag
func (h *ChatHandler) Typing(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Typing bool `json:"typing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.SetTyping(c.Request.Context(), userID, req.Typing); err != nil {
		if errors.Is(err, services.ErrNotMatched) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMatch returns the caller's match record, matched=false when none
func (h *ChatHandler) GetMatch(c *gin.Context) {
	userID := c.GetString("userID")

	match, err := h.matchService.GetMatchForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"matched": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": true, "match": match})
}

// UpdateMatchStatus applies a lifecycle transition to the caller's match
func (h *ChatHandler) UpdateMatchStatus(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.UpdateMatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matchService.UpdateStatus(c.Request.Context(), userID, models.MatchStatus(req.Status))
	if err != nil {
		if errors.Is(err, services.ErrNotMatched) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, match)
}
