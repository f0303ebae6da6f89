package models

import "time"

// Notification is a single entry in a user's notification feed. The read flag
// is monotone: it flips false→true once and never reverts.
type Notification struct {
	NotificationID string    `firestore:"notificationId" json:"notificationId"`
	UserID         string    `firestore:"userId" json:"userId"`
	Message        string    `firestore:"message" json:"message"`
	Link           string    `firestore:"link" json:"link,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
	Read           bool      `firestore:"read" json:"read"`
}

// NotificationListResponse represents the feed listing response
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}
