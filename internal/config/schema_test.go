package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
)

func writeSchemaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile_schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSchemaMissingFileFallsBackToDefault(t *testing.T) {
	schema, err := LoadSchema(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSchema().ProbeOrder, schema.ProbeOrder)
}

func TestLoadSchemaFromFile(t *testing.T) {
	path := writeSchemaFile(t, `
probeOrder:
  - admin_first
  - volunteer
roles:
  admin_first:
    collection: admins
  volunteer:
    collection: volunteers
    fields:
      - key: fullName
        label: Full name
        type: text
        required: true
      - key: areasOfHelp
        label: Areas of help
        type: select
        options: [conversation, errands]
`)

	schema, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleAdminFirst, models.RoleVolunteer}, schema.ProbeOrder)
	assert.Equal(t, "volunteers", schema.CollectionFor(models.RoleVolunteer))
	assert.Equal(t, "", schema.CollectionFor(models.RoleRequester))

	fields := schema.BaseFields(models.RoleVolunteer)
	require.Len(t, fields, 2)
	assert.True(t, fields[0].Required)
	assert.Equal(t, []string{"conversation", "errands"}, fields[1].Options)
}

func TestLoadSchemaRejectsUnknownProbeRole(t *testing.T) {
	path := writeSchemaFile(t, `
probeOrder:
  - ghost_role
roles:
  volunteer:
    collection: volunteers
`)
	_, err := LoadSchema(path)
	assert.Error(t, err)
}

func TestLoadSchemaRejectsBadFieldType(t *testing.T) {
	path := writeSchemaFile(t, `
probeOrder:
  - volunteer
roles:
  volunteer:
    collection: volunteers
    fields:
      - key: x
        label: X
        type: hologram
`)
	_, err := LoadSchema(path)
	assert.Error(t, err)
}

func TestLoadSchemaRejectsMalformedYAML(t *testing.T) {
	path := writeSchemaFile(t, "probeOrder: [unclosed")
	_, err := LoadSchema(path)
	assert.Error(t, err)
}

func TestDefaultSchemaIsSelfConsistent(t *testing.T) {
	schema := DefaultSchema()
	for _, role := range schema.ProbeOrder {
		assert.NotEmpty(t, schema.CollectionFor(role), role)
	}
}
