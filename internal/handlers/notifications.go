package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
)

type NotificationHandler struct {
	notifications *repository.NotificationRepository
}

func NewNotificationHandler(notifications *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications, newest first, with the unread count
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	items, err := h.notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, models.NotificationListResponse{
		Notifications: items,
		Unread:        unread,
	})
}

// MarkAllRead flags every unread notification read in one atomic batch
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")

	items, err := h.notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var unread []string
	for _, n := range items {
		if !n.Read {
			unread = append(unread, n.NotificationID)
		}
	}
	if err := h.notifications.MarkRead(c.Request.Context(), unread); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "marked": len(unread)})
}

// ClearAll deletes every notification owned by the caller in one atomic batch
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	userID := c.GetString("userID")

	items, err := h.notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ids := make([]string, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.NotificationID)
	}
	if err := h.notifications.DeleteAll(c.Request.Context(), ids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cleared": len(ids)})
}
