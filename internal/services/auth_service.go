package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/config"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo *repository.UserRepository
	schema   *config.Schema
	tokens   *TokenStore
}

func NewAuthService(userRepo *repository.UserRepository, schema *config.Schema, tokens *TokenStore) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		schema:   schema,
		tokens:   tokens,
	}
}

// Register creates a new user account. The role is fixed here and never
// changes afterwards; admin tiers cannot be self-assigned. New accounts start
// unapproved and wait for an admin.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := utils.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, errors.New("unknown role")
	}
	if role.IsAdmin() {
		return nil, errors.New("admin accounts cannot be self-registered")
	}

	// Check if email is already registered
	existingUser, _ := s.userRepo.GetUserByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, errors.New("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID, err := generateUserID()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		UserID:       userID,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Approved:     false,
		CreatedAt:    time.Now(),
		Profile:      req.Profile,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// Create the role-collection profile document the role resolver probes
	collection := s.schema.CollectionFor(role)
	if collection != "" {
		if err := s.userRepo.CreateProfileDoc(ctx, collection, userID, req.Profile); err != nil {
			return nil, err
		}
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s.tokens.StoreToken(token, userID)

	return &models.AuthResponse{
		UserID:   userID,
		Username: req.Username,
		Role:     role,
		Approved: false,
		Token:    token,
	}, nil
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s.tokens.StoreToken(token, user.UserID)

	return &models.AuthResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     user.Role,
		Approved: user.Approved,
		Token:    token,
	}, nil
}

// UpdateExpoToken updates the user's push token
func (s *AuthService) UpdateExpoToken(ctx context.Context, userID, expoToken string) error {
	if expoToken == "" {
		return errors.New("expo token cannot be empty")
	}
	return s.userRepo.UpdateExpoToken(ctx, userID, expoToken)
}

// Logout invalidates a user's token
func (s *AuthService) Logout(token string) {
	s.tokens.DeleteToken(token)
}

// RefreshToken extends a session
func (s *AuthService) RefreshToken(token string) bool {
	return s.tokens.RefreshToken(token)
}

// Helper functions

func generateUserID() (string, error) {
	return randomString(16)
}

func generateToken() (string, error) {
	return randomString(32)
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
