package models

import "time"

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
)

// Event is a community event published by an admin. InterestedUsers is a set
// of user ids; the toggle operation is idempotent and its own inverse.
type Event struct {
	EventID         string      `firestore:"eventId" json:"eventId"`
	Name            string      `firestore:"name" json:"name"`
	Description     string      `firestore:"description" json:"description,omitempty"`
	Location        string      `firestore:"location" json:"location,omitempty"`
	ContactInfo     string      `firestore:"contactInfo" json:"contactInfo,omitempty"`
	Mail            string      `firestore:"mail" json:"mail,omitempty"`
	ScheduledTime   time.Time   `firestore:"scheduledTime" json:"scheduledTime"`
	Status          EventStatus `firestore:"status" json:"status"`
	Image           string      `firestore:"image" json:"image,omitempty"`
	InterestedUsers []string    `firestore:"interestedUsers" json:"interestedUsers"`
	CreatedAt       time.Time   `firestore:"createdAt" json:"createdAt"`
}

// IsInterested reports whether the user is in the event's interest set
func (e *Event) IsInterested(userID string) bool {
	for _, id := range e.InterestedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateEventRequest represents the event creation request body
type CreateEventRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	ContactInfo   string `json:"contactInfo"`
	Mail          string `json:"mail" binding:"omitempty,email"`
	ScheduledTime string `json:"scheduledTime" binding:"required"`
	Image         string `json:"image"`
}

// EventListResponse represents the catalog listing response
type EventListResponse struct {
	Upcoming []Event `json:"upcoming"`
	Past     []Event `json:"past"`
}
