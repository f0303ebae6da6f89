package models

import "time"

// Role identifies which dashboard and profile schema a user gets
type Role string

const (
	RoleAdminFirst  Role = "admin_first"
	RoleAdminSecond Role = "admin_second"
	RoleVolunteer   Role = "volunteer"
	RoleRequester   Role = "requester"
)

// IsAdmin reports whether the role is one of the admin tiers
func (r Role) IsAdmin() bool {
	return r == RoleAdminFirst || r == RoleAdminSecond
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdminFirst, RoleAdminSecond, RoleVolunteer, RoleRequester:
		return true
	}
	return false
}

// User represents a registered user. Role is fixed at registration and the
// profile map carries the role-dependent fields plus admin-defined custom fields.
type User struct {
	UserID       string                 `firestore:"userId" json:"userId"`
	Email        string                 `firestore:"email" json:"email"`
	Username     string                 `firestore:"username" json:"username"`
	PasswordHash string                 `firestore:"passwordHash" json:"-"` // Don't expose in JSON
	Role         Role                   `firestore:"role" json:"role"`
	Approved     bool                   `firestore:"approved" json:"approved"`
	ExpoToken    string                 `firestore:"expoToken" json:"expoToken,omitempty"`
	CreatedAt    time.Time              `firestore:"createdAt" json:"createdAt"`
	Profile      map[string]interface{} `firestore:"profile" json:"profile,omitempty"`
}

// ProtectedFields are user fields that cannot be changed through profile updates
var ProtectedFields = map[string]bool{
	"userId":       true,
	"role":         true,
	"approved":     true,
	"createdAt":    true,
	"passwordHash": true,
	"matchId":      true,
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string                 `json:"email" binding:"required,email"`
	Username string                 `json:"username" binding:"required,min=3,max=16"`
	Password string                 `json:"password" binding:"required,min=6"`
	Role     string                 `json:"role" binding:"required"`
	Profile  map[string]interface{} `json:"profile"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Approved bool   `json:"approved"`
	Token    string `json:"token"`
}

// UpdateExpoTokenRequest represents the push token update request
type UpdateExpoTokenRequest struct {
	ExpoToken string `json:"expoToken" binding:"required"`
}

// UpdateProfileRequest represents a profile update. Keys in ProtectedFields
// are rejected before anything is written.
type UpdateProfileRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}
