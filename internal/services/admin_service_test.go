package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

func newAdminFixture(t *testing.T) (*store.MemoryStore, *AdminService) {
	t.Helper()
	st := store.NewMemoryStore()
	users := repository.NewUserRepository(st)
	notifications := repository.NewNotificationRepository(st)
	notifier := NewNotifier(notifications, users, nil)
	svc := NewAdminService(users, repository.NewSchemaRepository(st), notifier)
	return st, svc
}

func seedAdminUser(t *testing.T, st *store.MemoryStore, userID string, role models.Role, createdAt time.Time) {
	t.Helper()
	users := repository.NewUserRepository(st)
	require.NoError(t, users.CreateUser(context.Background(), &models.User{
		UserID:    userID,
		Email:     userID + "@example.org",
		Username:  "user_" + userID,
		Role:      role,
		CreatedAt: createdAt,
	}))
}

func TestAdminOperationsRequireAdminRole(t *testing.T) {
	ctx := context.Background()
	st, svc := newAdminFixture(t)
	seedAdminUser(t, st, "vol", models.RoleVolunteer, time.Now())

	_, err := svc.ListUsers(ctx, "vol")
	assert.ErrorIs(t, err, ErrNotAdmin)

	assert.ErrorIs(t, svc.ApproveUser(ctx, "vol", "anyone"), ErrNotAdmin)

	_, err = svc.AddCustomField(ctx, "vol", &repository.CustomField{Key: "k", Label: "l", Role: models.RoleVolunteer})
	assert.ErrorIs(t, err, ErrNotAdmin)

	assert.ErrorIs(t, svc.DeleteCustomField(ctx, "vol", "f1"), ErrNotAdmin)

	_, err = svc.RegistrationStats(ctx, "vol", BucketDay)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestSecondAdminTierHasAccess(t *testing.T) {
	ctx := context.Background()
	st, svc := newAdminFixture(t)
	seedAdminUser(t, st, "adm2", models.RoleAdminSecond, time.Now())

	_, err := svc.ListUsers(ctx, "adm2")
	assert.NoError(t, err)
}

func TestApproveUserNotifiesTarget(t *testing.T) {
	ctx := context.Background()
	st, svc := newAdminFixture(t)
	seedAdminUser(t, st, "adm", models.RoleAdminFirst, time.Now())
	seedAdminUser(t, st, "newbie", models.RoleRequester, time.Now())

	require.NoError(t, svc.ApproveUser(ctx, "adm", "newbie"))

	users := repository.NewUserRepository(st)
	user, err := users.GetUserByID(ctx, "newbie")
	require.NoError(t, err)
	assert.True(t, user.Approved)

	notifications := repository.NewNotificationRepository(st)
	items, err := notifications.ListByUser(ctx, "newbie")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/dashboard", items[0].Link)
}

func TestAddCustomFieldValidation(t *testing.T) {
	ctx := context.Background()
	st, svc := newAdminFixture(t)
	seedAdminUser(t, st, "adm", models.RoleAdminFirst, time.Now())

	_, err := svc.AddCustomField(ctx, "adm", &repository.CustomField{Label: "no key", Role: models.RoleVolunteer})
	assert.Error(t, err)

	_, err = svc.AddCustomField(ctx, "adm", &repository.CustomField{Key: "k", Label: "l", Role: "superuser"})
	assert.Error(t, err)

	fieldID, err := svc.AddCustomField(ctx, "adm", &repository.CustomField{Key: "k", Label: "l", Type: "text", Role: models.RoleVolunteer})
	require.NoError(t, err)
	assert.NotEmpty(t, fieldID)

	require.NoError(t, svc.DeleteCustomField(ctx, "adm", fieldID))
	fields, err := repository.NewSchemaRepository(st).ListCustomFields(ctx, models.RoleVolunteer)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRegistrationStats(t *testing.T) {
	ctx := context.Background()
	st, svc := newAdminFixture(t)
	seedAdminUser(t, st, "adm", models.RoleAdminFirst, time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC))
	seedAdminUser(t, st, "u1", models.RoleRequester, time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC))
	seedAdminUser(t, st, "u2", models.RoleVolunteer, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	buckets, err := svc.RegistrationStats(ctx, "adm", BucketDay)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, 2, buckets[0].Count)

	_, err = svc.RegistrationStats(ctx, "adm", BucketUnit("decade"))
	assert.Error(t, err)
}
