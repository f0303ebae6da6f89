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

func newEventFixture(t *testing.T) (*store.MemoryStore, *EventService) {
	t.Helper()
	st := store.NewMemoryStore()
	return st, NewEventService(repository.NewEventRepository(st), nil)
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	_, svc := newEventFixture(t)

	event, err := svc.CreateEvent(ctx, &models.CreateEventRequest{
		Name:          "Community picnic",
		Description:   "Bring your own sandwiches",
		Location:      "City park",
		ScheduledTime: "2026-09-15 16:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, models.EventScheduled, event.Status)
	assert.Equal(t, time.Date(2026, 9, 15, 16, 0, 0, 0, time.UTC), event.ScheduledTime)
	assert.NotNil(t, event.InterestedUsers)
}

func TestCreateEventRejectsMalformedDate(t *testing.T) {
	ctx := context.Background()
	_, svc := newEventFixture(t)

	_, err := svc.CreateEvent(ctx, &models.CreateEventRequest{
		Name:          "Broken",
		ScheduledTime: "next tuesday-ish",
	})
	assert.Error(t, err)
}

func TestCatalogSplitsAroundNow(t *testing.T) {
	ctx := context.Background()
	_, svc := newEventFixture(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	for _, date := range []string{"2026-07-01", "2026-07-20", "2026-08-10", "2026-09-01"} {
		_, err := svc.CreateEvent(ctx, &models.CreateEventRequest{Name: date, ScheduledTime: date})
		require.NoError(t, err)
	}

	catalog, err := svc.Catalog(ctx)
	require.NoError(t, err)

	require.Len(t, catalog.Upcoming, 2)
	assert.Equal(t, "2026-08-10", catalog.Upcoming[0].Name, "upcoming is soonest first")
	assert.Equal(t, "2026-09-01", catalog.Upcoming[1].Name)

	require.Len(t, catalog.Past, 2)
	assert.Equal(t, "2026-07-20", catalog.Past[0].Name, "past is most recent first")
	assert.Equal(t, "2026-07-01", catalog.Past[1].Name)
}

func TestCancelEventIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st, svc := newEventFixture(t)
	repo := repository.NewEventRepository(st)

	event, err := svc.CreateEvent(ctx, &models.CreateEventRequest{Name: "x", ScheduledTime: "2026-09-01"})
	require.NoError(t, err)

	require.NoError(t, svc.CancelEvent(ctx, event.EventID))
	require.NoError(t, svc.CancelEvent(ctx, event.EventID))

	got, err := repo.GetEventByID(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, models.EventCancelled, got.Status)
}

func TestCancelMissingEvent(t *testing.T) {
	ctx := context.Background()
	_, svc := newEventFixture(t)
	assert.ErrorIs(t, svc.CancelEvent(ctx, "nope"), repository.ErrEventNotFound)
}

func TestToggleInterestIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	st, svc := newEventFixture(t)
	repo := repository.NewEventRepository(st)

	event, err := svc.CreateEvent(ctx, &models.CreateEventRequest{Name: "x", ScheduledTime: "2026-09-01"})
	require.NoError(t, err)

	interested, err := svc.ToggleInterest(ctx, event.EventID, "u1")
	require.NoError(t, err)
	assert.True(t, interested)

	got, err := repo.GetEventByID(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.InterestedUsers)

	interested, err = svc.ToggleInterest(ctx, event.EventID, "u1")
	require.NoError(t, err)
	assert.False(t, interested)

	got, err = repo.GetEventByID(ctx, event.EventID)
	require.NoError(t, err)
	assert.Empty(t, got.InterestedUsers, "toggling twice restores the original set")
}

func TestToggleInterestPreservesOtherUsers(t *testing.T) {
	ctx := context.Background()
	st, svc := newEventFixture(t)
	repo := repository.NewEventRepository(st)

	event, err := svc.CreateEvent(ctx, &models.CreateEventRequest{Name: "x", ScheduledTime: "2026-09-01"})
	require.NoError(t, err)

	_, err = svc.ToggleInterest(ctx, event.EventID, "u1")
	require.NoError(t, err)
	_, err = svc.ToggleInterest(ctx, event.EventID, "u2")
	require.NoError(t, err)
	_, err = svc.ToggleInterest(ctx, event.EventID, "u1")
	require.NoError(t, err)

	got, err := repo.GetEventByID(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, got.InterestedUsers)
}

func TestToggleInterestRequiresUser(t *testing.T) {
	ctx := context.Background()
	_, svc := newEventFixture(t)
	_, err := svc.ToggleInterest(ctx, "any", "")
	assert.Error(t, err)
}
