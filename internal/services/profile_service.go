package services

import (
	"context"
	"fmt"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/config"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
)

type ProfileService struct {
	users      *repository.UserRepository
	schemaRepo *repository.SchemaRepository
	schema     *config.Schema
}

func NewProfileService(users *repository.UserRepository, schemaRepo *repository.SchemaRepository, schema *config.Schema) *ProfileService {
	return &ProfileService{
		users:      users,
		schemaRepo: schemaRepo,
		schema:     schema,
	}
}

// GetProfile returns the user together with the resolved field definitions
// for their role.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, []config.FieldDef, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	defs, err := s.FieldDefinitions(ctx, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, defs, nil
}

// FieldDefinitions is the single schema lookup: the role's base fields from
// the schema file merged with the admin-defined custom fields. Custom fields
// never shadow a base field key.
func (s *ProfileService) FieldDefinitions(ctx context.Context, role models.Role) ([]config.FieldDef, error) {
	base := s.schema.BaseFields(role)
	defs := append([]config.FieldDef(nil), base...)
	seen := make(map[string]bool, len(base))
	for _, def := range base {
		seen[def.Key] = true
	}

	custom, err := s.schemaRepo.ListCustomFields(ctx, role)
	if err != nil {
		return nil, err
	}
	for _, field := range custom {
		if seen[field.Key] {
			continue
		}
		seen[field.Key] = true
		defs = append(defs, config.FieldDef{
			Key:      field.Key,
			Label:    field.Label,
			Type:     field.Type,
			Required: field.Required,
			Options:  field.Options,
		})
	}
	return defs, nil
}

// UpdateProfile applies owner edits to profile fields. Protected account
// fields (role, approval, creation time, match linkage) are rejected before
// anything is written.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}
	for key := range fields {
		if models.ProtectedFields[key] {
			return fmt.Errorf("field %q cannot be modified", key)
		}
	}
	return s.users.UpdateProfileFields(ctx, userID, fields)
}
