package models

import "time"

// MatchStatus represents the lifecycle status of a match
type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchActive   MatchStatus = "active"
	MatchCanceled MatchStatus = "canceled"
)

// Match links one requester to one volunteer. The document is keyed by the
// requester id. Typing and lastTyping are keyed by user id so each party only
// ever writes its own entry (disjoint field paths, last write wins).
type Match struct {
	MatchID       string               `firestore:"matchId" json:"matchId"`
	RequesterID   string               `firestore:"requesterId" json:"requesterId"`
	VolunteerID   string               `firestore:"volunteerId" json:"volunteerId"`
	Status        MatchStatus          `firestore:"status" json:"status"`
	ScheduledTime time.Time            `firestore:"scheduledTime" json:"scheduledTime"`
	Typing        map[string]bool      `firestore:"typing" json:"typing,omitempty"`
	LastTyping    map[string]time.Time `firestore:"lastTyping" json:"lastTyping,omitempty"`
}

// CounterpartOf returns the other party of the match, or "" if userID is not
// part of the match or the counterpart is not assigned yet.
func (m *Match) CounterpartOf(userID string) string {
	switch userID {
	case m.RequesterID:
		return m.VolunteerID
	case m.VolunteerID:
		return m.RequesterID
	}
	return ""
}

// IsTyping reports whether the given party currently has its typing flag set
func (m *Match) IsTyping(userID string) bool {
	return m.Typing[userID]
}

// TransitionAllowed reports whether a status change is legal.
// Allowed: pending→active, pending→canceled, active→canceled.
// Canceled is absorbing.
func TransitionAllowed(from, to MatchStatus) bool {
	switch from {
	case MatchPending:
		return to == MatchActive || to == MatchCanceled
	case MatchActive:
		return to == MatchCanceled
	}
	return false
}

// UpdateMatchStatusRequest represents the status change request body
type UpdateMatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
