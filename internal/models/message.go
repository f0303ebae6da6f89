package models

import "time"

// Message is a single chat message within a thread. Messages are immutable
// once written except for the read flag, which only ever goes false→true and
// is only set by the receiving party.
type Message struct {
	MessageID string    `firestore:"messageId" json:"messageId"`
	SenderID  string    `firestore:"senderId" json:"senderId"`
	Text      string    `firestore:"text" json:"text"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
	Read      bool      `firestore:"read" json:"read"`
}

// SendMessageRequest represents the send message request body
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
