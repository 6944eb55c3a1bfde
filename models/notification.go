package models

import "time"

type Notification struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	IsRead    bool      `bson:"is_read" json:"is_read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// BookingCreatedPayload is the task payload emitted after a booking is stored.
type BookingCreatedPayload struct {
	BookingID string  `json:"bookingId"`
	UserID    string  `json:"userId"`
	AgentID   string  `json:"agentId,omitempty"`
	Total     float64 `json:"total"`
}
