package models

import "time"

// Booking and payment statuses.
const (
	BookingStatusPending = "pending"
	PaymentStatusPending = "pending"
)

// FaultLine is a fault as recorded on a booking.
type FaultLine struct {
	ID    string  `bson:"id" json:"id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// Pricing is the quote shown on the summary step.
type Pricing struct {
	ServiceCharge  float64 `json:"service_charge"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Discount       float64 `json:"discount"`
	Total          float64 `json:"total"`
}

// BookingPayload is a booking as submitted and stored.
type BookingPayload struct {
	BookingID      string `bson:"booking_id" json:"booking_id,omitempty"`
	UserID         string `bson:"user_id" json:"user_id"`
	DeviceID       string `bson:"device_id" json:"device_id"`
	CityID         string `bson:"city_id" json:"city_id"`
	ServiceTypeID  string `bson:"service_type_id" json:"service_type_id"`
	DurationTypeID string `bson:"duration_type_id,omitempty" json:"duration_type_id,omitempty"`
	AgentID        string `bson:"agent_id,omitempty" json:"agent_id,omitempty"`

	ScheduledDate  string `bson:"scheduled_date" json:"scheduled_date"`
	ScheduledTime  string `bson:"scheduled_time" json:"scheduled_time"`
	CollectionDate string `bson:"collection_date,omitempty" json:"collection_date,omitempty"`
	CollectionTime string `bson:"collection_time,omitempty" json:"collection_time,omitempty"`
	DeliveryDate   string `bson:"delivery_date,omitempty" json:"delivery_date,omitempty"`
	DeliveryTime   string `bson:"delivery_time,omitempty" json:"delivery_time,omitempty"`

	PricingServiceCharge  *float64 `bson:"pricing_service_charge" json:"pricing_service_charge"`
	PricingDeliveryCharge *float64 `bson:"pricing_delivery_charge" json:"pricing_delivery_charge"`
	PricingDiscount       float64  `bson:"pricing_discount" json:"pricing_discount"`
	PricingTotal          *float64 `bson:"pricing_total" json:"pricing_total"`

	PaymentMethod string `bson:"payment_method" json:"payment_method"`
	PaymentStatus string `bson:"payment_status" json:"payment_status"`
	Status        string `bson:"status" json:"status"`

	Faults     []FaultLine `bson:"faults,omitempty" json:"faults,omitempty"`
	Images     []string    `bson:"images,omitempty" json:"images,omitempty"`
	PromoCode  string      `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	Notes      string      `bson:"notes,omitempty" json:"notes,omitempty"`
	IMEINumber string      `bson:"imei_number" json:"imei_number"`

	AddressStreet     string   `bson:"address_street" json:"address_street"`
	AddressCity       string   `bson:"address_city" json:"address_city"`
	AddressState      string   `bson:"address_state" json:"address_state"`
	AddressPincode    string   `bson:"address_pincode" json:"address_pincode"`
	AddressLandmark   string   `bson:"address_landmark,omitempty" json:"address_landmark,omitempty"`
	AddressLatitude   *float64 `bson:"address_latitude" json:"address_latitude"`
	AddressLongitude  *float64 `bson:"address_longitude" json:"address_longitude"`
	AddressFull       string   `bson:"address_full" json:"address_full"`
	LocationType      string   `bson:"location_type" json:"location_type"`
	IsAddressVerified bool     `bson:"is_address_verified" json:"is_address_verified"`

	CreatedAt time.Time `bson:"created_at" json:"created_at,omitzero"`
}

// BookingReceipt is returned after a booking is stored.
type BookingReceipt struct {
	BookingID string `json:"booking_id"`
	ID        string `json:"id"`
}
