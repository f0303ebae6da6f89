package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/config"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

func newProfileFixture(t *testing.T) (*store.MemoryStore, *ProfileService, *repository.SchemaRepository) {
	t.Helper()
	st := store.NewMemoryStore()
	schemaRepo := repository.NewSchemaRepository(st)
	svc := NewProfileService(repository.NewUserRepository(st), schemaRepo, config.DefaultSchema())
	return st, svc, schemaRepo
}

func seedUser(t *testing.T, st *store.MemoryStore, userID string, role models.Role) {
	t.Helper()
	users := repository.NewUserRepository(st)
	require.NoError(t, users.CreateUser(context.Background(), &models.User{
		UserID:    userID,
		Email:     userID + "@example.org",
		Username:  "user_" + userID,
		Role:      role,
		CreatedAt: time.Now(),
		Profile:   map[string]interface{}{"fullName": "Someone"},
	}))
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	st, svc, _ := newProfileFixture(t)
	seedUser(t, st, "u1", models.RoleVolunteer)

	user, defs, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.NotEmpty(t, defs, "volunteer role carries base field definitions")
}

func TestFieldDefinitionsMergeCustomFields(t *testing.T) {
	ctx := context.Background()
	_, svc, schemaRepo := newProfileFixture(t)

	_, err := schemaRepo.CreateCustomField(ctx, &repository.CustomField{
		Role:  models.RoleVolunteer,
		Key:   "tshirtSize",
		Label: "T-shirt size",
		Type:  "select",
	})
	require.NoError(t, err)

	// A custom field for another role stays out
	_, err = schemaRepo.CreateCustomField(ctx, &repository.CustomField{
		Role:  models.RoleRequester,
		Key:   "requesterOnly",
		Label: "Requester only",
		Type:  "text",
	})
	require.NoError(t, err)

	defs, err := svc.FieldDefinitions(ctx, models.RoleVolunteer)
	require.NoError(t, err)

	keys := make([]string, 0, len(defs))
	for _, def := range defs {
		keys = append(keys, def.Key)
	}
	assert.Contains(t, keys, "fullName")
	assert.Contains(t, keys, "tshirtSize")
	assert.NotContains(t, keys, "requesterOnly")
}

func TestFieldDefinitionsCustomNeverShadowsBase(t *testing.T) {
	ctx := context.Background()
	_, svc, schemaRepo := newProfileFixture(t)

	_, err := schemaRepo.CreateCustomField(ctx, &repository.CustomField{
		Role:  models.RoleVolunteer,
		Key:   "fullName", // collides with a base field
		Label: "Shadow attempt",
		Type:  "text",
	})
	require.NoError(t, err)

	defs, err := svc.FieldDefinitions(ctx, models.RoleVolunteer)
	require.NoError(t, err)

	count := 0
	for _, def := range defs {
		if def.Key == "fullName" {
			count++
			assert.Equal(t, "Full name", def.Label, "the base definition wins")
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	st, svc, _ := newProfileFixture(t)
	seedUser(t, st, "u1", models.RoleVolunteer)

	require.NoError(t, svc.UpdateProfile(ctx, "u1", map[string]interface{}{"city": "Jerusalem"}))

	snap, err := st.Get(ctx, "users/u1")
	require.NoError(t, err)
	profile, ok := snap.Data["profile"].(store.Fields)
	require.True(t, ok)
	assert.Equal(t, "Jerusalem", profile["city"])
	assert.Equal(t, "Someone", profile["fullName"], "untouched fields survive")
}

func TestUpdateProfileRejectsProtectedFields(t *testing.T) {
	ctx := context.Background()
	st, svc, _ := newProfileFixture(t)
	seedUser(t, st, "u1", models.RoleVolunteer)

	for _, key := range []string{"role", "approved", "userId", "passwordHash", "matchId", "createdAt"} {
		err := svc.UpdateProfile(ctx, "u1", map[string]interface{}{key: "hijacked"})
		assert.Error(t, err, "field %s must be protected", key)
	}

	// A mixed update is rejected wholesale, writing nothing
	err := svc.UpdateProfile(ctx, "u1", map[string]interface{}{"city": "X", "role": "admin_first"})
	require.Error(t, err)
	snap, err := st.Get(ctx, "users/u1")
	require.NoError(t, err)
	profile := snap.Data["profile"].(store.Fields)
	assert.Nil(t, profile["city"])
}

func TestUpdateProfileRejectsEmptyUpdate(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newProfileFixture(t)
	assert.Error(t, svc.UpdateProfile(ctx, "u1", nil))
}
