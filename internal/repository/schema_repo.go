package repository

import (
	"context"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

const customFieldsCollection = "customFields"

// CustomField is an admin-defined profile field added on top of the base
// schema for a role.
type CustomField struct {
	FieldID  string      `firestore:"fieldId" json:"fieldId"`
	Role     models.Role `firestore:"role" json:"role"`
	Key      string      `firestore:"key" json:"key"`
	Label    string      `firestore:"label" json:"label"`
	Type     string      `firestore:"type" json:"type"`
	Required bool        `firestore:"required" json:"required"`
	Options  []string    `firestore:"options" json:"options,omitempty"`
}

type SchemaRepository struct {
	store store.Store
}

func NewSchemaRepository(st store.Store) *SchemaRepository {
	return &SchemaRepository{store: st}
}

// CreateCustomField stores an admin-defined field definition
func (r *SchemaRepository) CreateCustomField(ctx context.Context, field *CustomField) (string, error) {
	return r.store.Add(ctx, customFieldsCollection, store.Fields{
		"role":     field.Role,
		"key":      field.Key,
		"label":    field.Label,
		"type":     field.Type,
		"required": field.Required,
		"options":  field.Options,
	})
}

// ListCustomFields returns the admin-defined fields for a role
func (r *SchemaRepository) ListCustomFields(ctx context.Context, role models.Role) ([]CustomField, error) {
	snaps, err := r.store.Query(ctx, store.Query{Collection: customFieldsCollection}.
		Where("role", "==", role))
	if err != nil {
		return nil, err
	}

	fields := make([]CustomField, 0, len(snaps))
	for _, snap := range snaps {
		var field CustomField
		if err := snap.DataTo(&field); err != nil {
			continue
		}
		field.FieldID = snap.ID
		fields = append(fields, field)
	}
	return fields, nil
}

// DeleteCustomField removes an admin-defined field definition
func (r *SchemaRepository) DeleteCustomField(ctx context.Context, fieldID string) error {
	return r.store.Delete(ctx, customFieldsCollection+"/"+fieldID)
}
