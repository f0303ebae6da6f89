package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/services"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/pkg/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
	eventService *services.EventService
	matchService *services.MatchService
}

func NewAdminHandler(adminService *services.AdminService, eventService *services.EventService, matchService *services.MatchService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		eventService: eventService,
		matchService: matchService,
	}
}

func adminError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// ListUsers returns every registered user
func (h *AdminHandler) ListUsers(c *gin.Context) {
	userID := c.GetString("userID")

	users, err := h.adminService.ListUsers(c.Request.Context(), userID)
	if err != nil {
		adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ApproveUser approves a pending registration
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	userID := c.GetString("userID")
	targetID := c.Param("userId")

	if err := h.adminService.ApproveUser(c.Request.Context(), userID, targetID); err != nil {
		adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateEvent publishes a new event
func (h *AdminHandler) CreateEvent(c *gin.Context) {
	userID := c.GetString("userID")
	if _, err := h.adminService.ListUsers(c.Request.Context(), userID); err != nil {
		adminError(c, err)
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event)
}

// CancelEvent moves an event to cancelled
func (h *AdminHandler) CancelEvent(c *gin.Context) {
	userID := c.GetString("userID")
	if _, err := h.adminService.ListUsers(c.Request.Context(), userID); err != nil {
		adminError(c, err)
		return
	}

	if err := h.eventService.CancelEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateMatch links a requester to a volunteer
func (h *AdminHandler) CreateMatch(c *gin.Context) {
	userID := c.GetString("userID")
	if _, err := h.adminService.ListUsers(c.Request.Context(), userID); err != nil {
		adminError(c, err)
		return
	}

	var req struct {
		RequesterID   string `json:"requesterId" binding:"required"`
		VolunteerID   string `json:"volunteerId" binding:"required"`
		ScheduledTime string `json:"scheduledTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scheduledTime := time.Now()
	if req.ScheduledTime != "" {
		parsed, err := utils.ParseEventDate(req.ScheduledTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		scheduledTime = parsed
	}

	match, err := h.matchService.CreateMatch(c.Request.Context(), req.RequesterID, req.VolunteerID, scheduledTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, match)
}

// AddCustomField registers an admin-defined profile field
func (h *AdminHandler) AddCustomField(c *gin.Context) {
	userID := c.GetString("userID")

	var field repository.CustomField
	if err := c.ShouldBindJSON(&field); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fieldID, err := h.adminService.AddCustomField(c.Request.Context(), userID, &field)
	if err != nil {
		adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fieldId": fieldID})
}

// DeleteCustomField removes an admin-defined profile field
func (h *AdminHandler) DeleteCustomField(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.adminService.DeleteCustomField(c.Request.Context(), userID, c.Param("fieldId")); err != nil {
		adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegistrationStats returns sign-up buckets for the dashboard chart
func (h *AdminHandler) RegistrationStats(c *gin.Context) {
	userID := c.GetString("userID")
	unit := services.BucketUnit(c.DefaultQuery("unit", "day"))

	buckets, err := h.adminService.RegistrationStats(c.Request.Context(), userID, unit)
	if err != nil {
		adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit": unit, "buckets": buckets})
}
