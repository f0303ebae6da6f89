package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/config"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

func TestResolveRoleShortCircuitsOnFirstHit(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "volunteers/u1", store.Fields{"userId": "u1"}, false))
	// Lower-priority location also exists; it must never be probed
	require.NoError(t, st.Set(ctx, "requesters/u1", store.Fields{"userId": "u1"}, false))

	var probed []string
	exists := func(ctx context.Context, path string) (bool, error) {
		probed = append(probed, path)
		return ExistsViaStore(st)(ctx, path)
	}

	resolver := NewRoleResolver(config.DefaultSchema(), exists)
	resolution, err := resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVolunteer, resolution.Role)
	assert.Equal(t, []string{"admins/u1", "secondAdmins/u1", "volunteers/u1"}, probed)
}

func TestResolveRoleAdminWinsOverVolunteer(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "admins/u1", store.Fields{"userId": "u1"}, false))
	require.NoError(t, st.Set(ctx, "volunteers/u1", store.Fields{"userId": "u1"}, false))

	resolver := NewRoleResolver(config.DefaultSchema(), ExistsViaStore(st))
	resolution, err := resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdminFirst, resolution.Role)
}

func TestResolveRoleSkipsFailedProbe(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "requesters/u1", store.Fields{"userId": "u1"}, false))
	st.FailGet("admins/u1", errors.New("transient backend failure"))

	resolver := NewRoleResolver(config.DefaultSchema(), ExistsViaStore(st))
	resolution, err := resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleRequester, resolution.Role)
}

func TestResolveRolePermissionFailureEndsSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "volunteers/u1", store.Fields{"userId": "u1"}, false))
	st.FailGet("admins/u1", fmt.Errorf("probe admins/u1: %w", store.ErrPermissionDenied))

	resolver := NewRoleResolver(config.DefaultSchema(), ExistsViaStore(st))
	_, err := resolver.Resolve(ctx, "u1")
	require.ErrorIs(t, err, ErrSessionEnded)
	assert.Nil(t, resolver.Current("u1"))
}

func TestResolveRoleRolelessUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	resolver := NewRoleResolver(config.DefaultSchema(), ExistsViaStore(st))
	resolution, err := resolver.Resolve(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, models.Role(""), resolution.Role)
	assert.Equal(t, "ghost", resolution.UserID)
}

func TestResolveDiscardsStaleResolution(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "volunteers/u1", store.Fields{"userId": "u1"}, false))

	var resolver *RoleResolver
	invalidated := false
	exists := func(ctx context.Context, path string) (bool, error) {
		// Simulate the identity signing out while probes are in flight
		if !invalidated {
			invalidated = true
			resolver.Invalidate("u1")
		}
		return ExistsViaStore(st)(ctx, path)
	}
	resolver = NewRoleResolver(config.DefaultSchema(), exists)

	_, err := resolver.Resolve(ctx, "u1")
	require.ErrorIs(t, err, ErrStaleResolution)
	assert.Nil(t, resolver.Current("u1"), "a stale outcome must not be committed")
}

func TestInvalidateClearsCommittedState(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "volunteers/u1", store.Fields{"userId": "u1"}, false))

	resolver := NewRoleResolver(config.DefaultSchema(), ExistsViaStore(st))
	_, err := resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, resolver.Current("u1"))

	resolver.Invalidate("u1")
	assert.Nil(t, resolver.Current("u1"))
}

func TestResolveConcurrentIdentitiesCommitIndependently(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "volunteers/a", store.Fields{"userId": "a"}, false))
	require.NoError(t, st.Set(ctx, "requesters/b", store.Fields{"userId": "b"}, false))

	// Hold every probe until both sequences are in flight, so the two
	// resolutions genuinely overlap.
	started := make(chan struct{}, 16)
	release := make(chan struct{})
	exists := func(ctx context.Context, path string) (bool, error) {
		started <- struct{}{}
		<-release
		return ExistsViaStore(st)(ctx, path)
	}
	resolver := NewRoleResolver(config.DefaultSchema(), exists)

	type outcome struct {
		resolution *Resolution
		err        error
	}
	results := make(chan outcome, 2)
	for _, userID := range []string{"a", "b"} {
		userID := userID
		go func() {
			resolution, err := resolver.Resolve(ctx, userID)
			results <- outcome{resolution, err}
		}()
	}
	<-started
	<-started
	close(release)

	for i := 0; i < 2; i++ {
		got := <-results
		require.NoError(t, got.err)
		require.NotNil(t, got.resolution)
		switch got.resolution.UserID {
		case "a":
			assert.Equal(t, models.RoleVolunteer, got.resolution.Role)
		case "b":
			assert.Equal(t, models.RoleRequester, got.resolution.Role)
		default:
			t.Fatalf("unexpected resolution for %q", got.resolution.UserID)
		}
	}
	assert.NotNil(t, resolver.Current("a"))
	assert.NotNil(t, resolver.Current("b"))
}

func TestInvalidateIsScopedToItsIdentity(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "volunteers/a", store.Fields{"userId": "a"}, false))
	require.NoError(t, st.Set(ctx, "requesters/b", store.Fields{"userId": "b"}, false))

	var resolver *RoleResolver
	exists := func(ctx context.Context, path string) (bool, error) {
		// Another user signing out mid-probe must not disturb this sequence
		resolver.Invalidate("a")
		return ExistsViaStore(st)(ctx, path)
	}
	resolver = NewRoleResolver(config.DefaultSchema(), exists)

	resolution, err := resolver.Resolve(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, models.RoleRequester, resolution.Role)
	assert.Nil(t, resolver.Current("a"))
	assert.NotNil(t, resolver.Current("b"))
}
