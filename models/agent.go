package models

import "time"

// Agent statuses.
const (
	AgentStatusPending   = "pending"
	AgentStatusApproved  = "approved"
	AgentStatusRejected  = "rejected"
	AgentStatusSuspended = "suspended"
)

// Agent is a repair shop that fulfils bookings inside one service city.
type Agent struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id,omitempty"`
	Name          string    `bson:"name" json:"name"`
	ShopName      string    `bson:"shop_name" json:"shop_name"`
	Phone         string    `bson:"phone" json:"phone,omitempty"`
	Email         string    `bson:"email" json:"email,omitempty"`
	Address       string    `bson:"address" json:"address,omitempty"`
	CityID        string    `bson:"city_id" json:"city_id"`
	StateID       string    `bson:"state_id" json:"state_id,omitempty"`
	Latitude      *float64  `bson:"latitude" json:"latitude"`
	Longitude     *float64  `bson:"longitude" json:"longitude"`
	IsOnline      bool      `bson:"is_online" json:"is_online"`
	Status        string    `bson:"status" json:"status"`
	RatingAverage float64   `bson:"rating_average" json:"rating_average"`
	RatingCount   int       `bson:"rating_count" json:"rating_count"`
	CompletedJobs int       `bson:"completed_jobs" json:"completed_jobs"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at,omitzero"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at,omitzero"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (a Agent) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// RankedAgent is an eligible agent annotated with its distance, in miles,
// from the customer's pin. Distance is computed per ranking and never stored.
type RankedAgent struct {
	Agent
	Distance float64 `json:"distance"`
}

// AgentApplication is a shop's request to join the marketplace.
type AgentApplication struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Name        string    `bson:"name" json:"name"`
	ShopName    string    `bson:"shop_name" json:"shop_name"`
	Phone       string    `bson:"phone" json:"phone"`
	Email       string    `bson:"email" json:"email"`
	Address     string    `bson:"address" json:"address"`
	CityID      string    `bson:"city_id" json:"city_id"`
	StateID     string    `bson:"state_id" json:"state_id"`
	Latitude    *float64  `bson:"latitude" json:"latitude"`
	Longitude   *float64  `bson:"longitude" json:"longitude"`
	IDDocument  string    `bson:"id_document" json:"id_document,omitempty"`
	ShopPhotos  []string  `bson:"shop_photos" json:"shop_photos,omitempty"`
	Status      string    `bson:"status" json:"status"`
	ReviewNotes string    `bson:"review_notes,omitempty" json:"review_notes,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	ReviewedAt  time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitzero"`
}
