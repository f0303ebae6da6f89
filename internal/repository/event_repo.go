package repository

import (
	"context"
	"errors"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

const eventsCollection = "events"

// ErrEventNotFound is returned when a lookup matches no event
var ErrEventNotFound = errors.New("event not found")

type EventRepository struct {
	store store.Store
}

func NewEventRepository(st store.Store) *EventRepository {
	return &EventRepository{store: st}
}

// CreateEvent creates an event and returns its generated id
func (r *EventRepository) CreateEvent(ctx context.Context, event *models.Event) (string, error) {
	id, err := r.store.Add(ctx, eventsCollection, store.Fields{
		"name":            event.Name,
		"description":     event.Description,
		"location":        event.Location,
		"contactInfo":     event.ContactInfo,
		"mail":            event.Mail,
		"scheduledTime":   event.ScheduledTime,
		"status":          event.Status,
		"image":           event.Image,
		"interestedUsers": event.InterestedUsers,
		"createdAt":       store.ServerTimestamp,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetEventByID retrieves an event by its id
func (r *EventRepository) GetEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	snap, err := r.store.Get(ctx, eventsCollection+"/"+eventID)
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, ErrEventNotFound
	}

	var event models.Event
	if err := snap.DataTo(&event); err != nil {
		return nil, err
	}
	event.EventID = snap.ID
	return &event, nil
}

// ListEvents returns all events ordered by scheduled time ascending
func (r *EventRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	snaps, err := r.store.Query(ctx, store.Query{
		Collection: eventsCollection,
		OrderBy:    "scheduledTime",
	})
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(snaps))
	for _, snap := range snaps {
		var event models.Event
		if err := snap.DataTo(&event); err != nil {
			continue
		}
		event.EventID = snap.ID
		events = append(events, event)
	}
	return events, nil
}

// UpdateStatus sets the event lifecycle status
func (r *EventRepository) UpdateStatus(ctx context.Context, eventID string, status models.EventStatus) error {
	return r.store.Update(ctx, eventsCollection+"/"+eventID, []store.Update{
		{Path: "status", Value: status},
	})
}

// SetInterestedUsers replaces the event's interest set
func (r *EventRepository) SetInterestedUsers(ctx context.Context, eventID string, userIDs []string) error {
	return r.store.Update(ctx, eventsCollection+"/"+eventID, []store.Update{
		{Path: "interestedUsers", Value: userIDs},
	})
}
