package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"gopkg.in/yaml.v3"
)

// FieldDef describes one profile field in a role's schema
type FieldDef struct {
	Key      string   `yaml:"key" json:"key" validate:"required"`
	Label    string   `yaml:"label" json:"label" validate:"required"`
	Type     string   `yaml:"type" json:"type" validate:"required,oneof=text number date phone select"`
	Required bool     `yaml:"required" json:"required"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// RoleSchema binds a role to its profile collection and base field set
type RoleSchema struct {
	Collection string     `yaml:"collection" validate:"required"`
	Fields     []FieldDef `yaml:"fields" validate:"dive"`
}

// Schema is the profile schema configuration. ProbeOrder fixes the priority
// in which role collections are probed during role resolution.
type Schema struct {
	ProbeOrder []models.Role              `yaml:"probeOrder" validate:"required,min=1"`
	Roles      map[models.Role]RoleSchema `yaml:"roles" validate:"required,dive"`
}

var validate = validator.New()

// LoadSchema loads and validates the profile schema from a YAML file. A
// missing file yields the built-in default schema.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSchema(), nil
		}
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	if err := validate.Struct(&schema); err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	for _, role := range schema.ProbeOrder {
		if _, ok := schema.Roles[role]; !ok {
			return nil, fmt.Errorf("invalid schema file: probe order names unknown role %q", role)
		}
	}
	return &schema, nil
}

// CollectionFor returns the profile collection for a role, or "" if unknown
func (s *Schema) CollectionFor(role models.Role) string {
	rs, ok := s.Roles[role]
	if !ok {
		return ""
	}
	return rs.Collection
}

// BaseFields returns the configured field definitions for a role
func (s *Schema) BaseFields(role models.Role) []FieldDef {
	return s.Roles[role].Fields
}

// DefaultSchema returns the schema used when no configuration file exists
func DefaultSchema() *Schema {
	return &Schema{
		ProbeOrder: []models.Role{
			models.RoleAdminFirst,
			models.RoleAdminSecond,
			models.RoleVolunteer,
			models.RoleRequester,
		},
		Roles: map[models.Role]RoleSchema{
			models.RoleAdminFirst:  {Collection: "admins"},
			models.RoleAdminSecond: {Collection: "secondAdmins"},
			models.RoleVolunteer: {
				Collection: "volunteers",
				Fields: []FieldDef{
					{Key: "fullName", Label: "Full name", Type: "text", Required: true},
					{Key: "city", Label: "City", Type: "text"},
					{Key: "phone", Label: "Phone", Type: "phone"},
					{Key: "areasOfHelp", Label: "Areas of help", Type: "select", Options: []string{"conversation", "errands", "technology", "transport"}},
				},
			},
			models.RoleRequester: {
				Collection: "requesters",
				Fields: []FieldDef{
					{Key: "fullName", Label: "Full name", Type: "text", Required: true},
					{Key: "city", Label: "City", Type: "text"},
					{Key: "phone", Label: "Phone", Type: "phone"},
					{Key: "needDescription", Label: "What do you need help with", Type: "text"},
				},
			},
		},
	}
}
