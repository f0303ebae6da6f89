package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdminFirst, RoleAdminSecond, RoleVolunteer, RoleRequester} {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, Role("moderator").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, RoleAdminFirst.IsAdmin())
	assert.True(t, RoleAdminSecond.IsAdmin())
	assert.False(t, RoleVolunteer.IsAdmin())
	assert.False(t, RoleRequester.IsAdmin())
}

func TestProtectedFieldsCoverAccountState(t *testing.T) {
	for _, key := range []string{"userId", "role", "approved", "createdAt", "passwordHash", "matchId"} {
		assert.True(t, ProtectedFields[key], key)
	}
	assert.False(t, ProtectedFields["city"])
}
