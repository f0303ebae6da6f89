package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
)

// ErrNotAdmin is returned when a non-admin calls an admin operation
var ErrNotAdmin = errors.New("admin role required")

type AdminService struct {
	users      *repository.UserRepository
	schemaRepo *repository.SchemaRepository
	notifier   *Notifier
}

// NewAdminService creates the admin tooling service. notifier may be nil.
func NewAdminService(users *repository.UserRepository, schemaRepo *repository.SchemaRepository, notifier *Notifier) *AdminService {
	return &AdminService{
		users:      users,
		schemaRepo: schemaRepo,
		notifier:   notifier,
	}
}

// requireAdmin loads the caller and checks they hold an admin tier
func (s *AdminService) requireAdmin(ctx context.Context, adminID string) (*models.User, error) {
	admin, err := s.users.GetUserByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.Role.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return admin, nil
}

// ListUsers returns every registered user for the admin dashboard
func (s *AdminService) ListUsers(ctx context.Context, adminID string) ([]*models.User, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.users.ListAll(ctx)
}

// ApproveUser flips a user's approval flag and tells them about it
func (s *AdminService) ApproveUser(ctx context.Context, adminID, targetUserID string) error {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if err := s.users.SetApproved(ctx, targetUserID, true); err != nil {
		return err
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, targetUserID, "Your account has been approved", "/dashboard"); err != nil {
			log.WithError(err).WithField("userId", targetUserID).Error("approval notification failed")
		}
	}
	return nil
}

// AddCustomField registers an admin-defined profile field for a role
func (s *AdminService) AddCustomField(ctx context.Context, adminID string, field *repository.CustomField) (string, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return "", err
	}
	if field.Key == "" || field.Label == "" {
		return "", errors.New("custom field key and label are required")
	}
	if !field.Role.Valid() {
		return "", errors.New("unknown role")
	}
	return s.schemaRepo.CreateCustomField(ctx, field)
}

// DeleteCustomField removes an admin-defined profile field
func (s *AdminService) DeleteCustomField(ctx context.Context, adminID, fieldID string) error {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	return s.schemaRepo.DeleteCustomField(ctx, fieldID)
}

// RegistrationStats buckets user sign-ups for the dashboard bar chart
func (s *AdminService) RegistrationStats(ctx context.Context, adminID string, unit BucketUnit) ([]Bucket, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if !unit.Valid() {
		return nil, errors.New("unknown bucket unit")
	}

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(users))
	for _, user := range users {
		times = append(times, user.CreatedAt)
	}
	return BucketByTime(times, unit), nil
}
