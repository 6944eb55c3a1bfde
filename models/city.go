package models

import "time"

// City is a service city. Its pincode set decides which postcodes are served
// and its coordinates are the centre used for pin bounds checks.
type City struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	StateID   string    `bson:"state_id" json:"state_id"`
	Pincodes  []string  `bson:"pincodes" json:"pincodes"`
	Latitude  *float64  `bson:"latitude" json:"latitude"`
	Longitude *float64  `bson:"longitude" json:"longitude"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at,omitzero"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at,omitzero"`
}

// State groups cities.
type State struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// CitySummary is the public city listing entry.
type CitySummary struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// ServiceCity is the result of resolving a postcode.
type ServiceCity struct {
	CityID    string   `json:"city_id"`
	CityName  string   `json:"city"`
	StateID   string   `json:"state_id,omitempty"`
	StateName string   `json:"state"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
