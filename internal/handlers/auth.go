package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/services"
)

type AuthHandler struct {
	authService    *services.AuthService
	profileService *services.ProfileService
	resolver       *services.RoleResolver
	tokens         *services.TokenStore
}

func NewAuthHandler(authService *services.AuthService, profileService *services.ProfileService, resolver *services.RoleResolver, tokens *services.TokenStore) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		resolver:       resolver,
		tokens:         tokens,
	}
}

// Register creates a new account
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Login authenticates a user
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout invalidates the current session and drops the caller's resolver state
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	h.authService.Logout(token)
	h.resolver.Invalidate(c.GetString("userID"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RefreshToken extends the current session
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := c.GetString("token")
	if !h.authService.RefreshToken(token) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateExpoToken stores the caller's push token
func (h *AuthHandler) UpdateExpoToken(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.UpdateExpoTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.UpdateExpoToken(c.Request.Context(), userID, req.ExpoToken); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me resolves the caller's role and returns their account with the field
// definitions for their role. A user matching no role location is still
// authenticated; the response carries a warning instead of a role.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")

	resolution, err := h.resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrSessionEnded) {
			h.tokens.DeleteTokensForUser(userID)
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

	user, defs, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"user":   user,
		"fields": defs,
	}
	if resolution.Role == "" {
		response["warning"] = "no role resolved for this account"
	} else {
		response["role"] = resolution.Role
	}
	c.JSON(http.StatusOK, response)
}
