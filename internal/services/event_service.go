package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/pkg/utils"
)

type EventService struct {
	events   *repository.EventRepository
	notifier *Notifier
	now      func() time.Time
}

// NewEventService creates the event catalog service. notifier may be nil to
// skip the new-event broadcast.
func NewEventService(events *repository.EventRepository, notifier *Notifier) *EventService {
	return &EventService{
		events:   events,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock overrides the catalog clock (used in tests)
func (s *EventService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateEvent publishes a new event and notifies every approved user
func (s *EventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	scheduledTime, err := utils.ParseEventDate(req.ScheduledTime)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:            req.Name,
		Description:     req.Description,
		Location:        req.Location,
		ContactInfo:     req.ContactInfo,
		Mail:            req.Mail,
		ScheduledTime:   scheduledTime,
		Status:          models.EventScheduled,
		Image:           req.Image,
		InterestedUsers: []string{},
	}

	eventID, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	event.EventID = eventID

	if s.notifier != nil {
		if err := s.notifier.BroadcastEventPublished(ctx, event); err != nil {
			log.WithError(err).WithField("eventId", eventID).Error("event broadcast failed")
		}
	}
	return event, nil
}

// CancelEvent moves an event to cancelled. Cancelling twice is a no-op.
func (s *EventService) CancelEvent(ctx context.Context, eventID string) error {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status == models.EventCancelled {
		return nil
	}
	return s.events.UpdateStatus(ctx, eventID, models.EventCancelled)
}

// Catalog splits all events into upcoming and past around the current time.
// Upcoming events come soonest first, past events most recent first.
func (s *EventService) Catalog(ctx context.Context) (*models.EventListResponse, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &models.EventListResponse{
		Upcoming: []models.Event{},
		Past:     []models.Event{},
	}
	for _, event := range events {
		if event.ScheduledTime.Before(now) {
			resp.Past = append(resp.Past, event)
		} else {
			resp.Upcoming = append(resp.Upcoming, event)
		}
	}
	// ListEvents is ascending; past reads better newest first
	for i, j := 0, len(resp.Past)-1; i < j; i, j = i+1, j-1 {
		resp.Past[i], resp.Past[j] = resp.Past[j], resp.Past[i]
	}
	return resp, nil
}

// ToggleInterest flips the user's membership in the event's interest set and
// reports the resulting state. Toggling twice restores the original set.
func (s *EventService) ToggleInterest(ctx context.Context, eventID, userID string) (bool, error) {
	if userID == "" {
		return false, errors.New("user id is required")
	}
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return false, err
	}

	interested := false
	updated := make([]string, 0, len(event.InterestedUsers)+1)
	for _, id := range event.InterestedUsers {
		if id == userID {
			continue
		}
		updated = append(updated, id)
	}
	if len(updated) == len(event.InterestedUsers) {
		updated = append(updated, userID)
		interested = true
	}

	if err := s.events.SetInterestedUsers(ctx, eventID, updated); err != nil {
		return false, err
	}
	return interested, nil
}
