package models

import "time"

// Service type names understood by the booking wizard.
const (
	ServiceLocalDropoff       = "local_dropoff"
	ServiceCollectionDelivery = "collection_delivery"
	ServicePostal             = "postal"
)

// ServiceType is how the device reaches the agent.
type ServiceType struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Label       string `bson:"label" json:"label"`
	Description string `bson:"description" json:"description"`
	IsActive    bool   `bson:"is_active" json:"is_active"`
}

// DurationType is a turnaround option with its surcharge.
type DurationType struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Label       string    `bson:"label" json:"label"`
	Description string    `bson:"description" json:"description"`
	ExtraCharge float64   `bson:"extra_charge" json:"extra_charge"`
	SortOrder   int       `bson:"sort_order" json:"sort_order"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at,omitzero"`
}
