package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Catalog returns upcoming and past events
func (h *EventHandler) Catalog(c *gin.Context) {
	catalog, err := h.eventService.Catalog(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, catalog)
}

// ToggleInterest flips the caller's interest in an event
func (h *EventHandler) ToggleInterest(c *gin.Context) {
	userID := c.GetString("userID")
	eventID := c.Param("eventId")

	interested, err := h.eventService.ToggleInterest(c.Request.Context(), eventID, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interested": interested})
}
