package models

// BookingForm is the booking in progress, split into one record per wizard step.
type BookingForm struct {
	Device   DeviceDetails    `json:"device"`
	Location Location         `json:"location"`
	Service  ServiceSelection `json:"service"`
	Duration DurationChoice   `json:"duration"`
	Payment  PaymentChoice    `json:"payment"`
}

// SelectedFault is a fault reference with the price cached at selection time.
type SelectedFault struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DeviceDetails backs step 1.
type DeviceDetails struct {
	CategoryID  string          `json:"category"`
	BrandID     string          `json:"brand"`
	Model       string          `json:"model"`
	DeviceID    string          `json:"device_id,omitempty"`
	IMEI        string          `json:"imei_number"`
	Faults      []SelectedFault `json:"faults"`
	CustomFault string          `json:"custom_fault,omitempty"`
	Images      []string        `json:"images,omitempty"`
}

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location backs step 2.
type Location struct {
	Pincode      string      `json:"address_pincode"`
	Street       string      `json:"address_street"`
	Landmark     string      `json:"address_landmark,omitempty"`
	City         string      `json:"address_city"`
	State        string      `json:"address_state"`
	CityID       string      `json:"city_id"`
	StateID      string      `json:"state_id,omitempty"`
	Latitude     *float64    `json:"address_latitude"`
	Longitude    *float64    `json:"address_longitude"`
	Full         string      `json:"address_full,omitempty"`
	LocationType string      `json:"location_type"`
	CityCenter   *Coordinate `json:"city_center,omitempty"`
	Checked      bool        `json:"postcode_checked"`
	OutOfBounds  bool        `json:"out_of_bounds"`
}

// HasAddressData reports whether any address field has been filled in.
func (l Location) HasAddressData() bool {
	return l.Street != "" || l.Latitude != nil || l.Longitude != nil || l.City != "" || l.Pincode != ""
}

// ServiceSelection backs step 3. Dates are YYYY-MM-DD, times HH:MM.
type ServiceSelection struct {
	ServiceType    string `json:"service_type"`
	AgentID        string `json:"selected_agent,omitempty"`
	CollectionDate string `json:"collection_date,omitempty"`
	CollectionTime string `json:"collection_time,omitempty"`
	DeliveryDate   string `json:"delivery_date,omitempty"`
	DeliveryTime   string `json:"delivery_time,omitempty"`
}

// DurationChoice backs step 4.
type DurationChoice struct {
	Name      string `json:"duration"`
	PromoCode string `json:"promo_code,omitempty"`
}

// PaymentChoice backs step 5.
type PaymentChoice struct {
	Method string `json:"payment_method"`
}

// FormPatch is a partial update to a BookingForm. Nil fields are left alone.
type FormPatch struct {
	CategoryID  *string  `json:"category"`
	BrandID     *string  `json:"brand"`
	Model       *string  `json:"model"`
	IMEI        *string  `json:"imei_number"`
	FaultIDs    []string `json:"fault_ids"`
	CustomFault *string  `json:"custom_fault"`
	Images      []string `json:"images"`

	Pincode      *string     `json:"address_pincode"`
	Street       *string     `json:"address_street"`
	Landmark     *string     `json:"address_landmark"`
	LocationType *string     `json:"location_type"`
	Pin          *Coordinate `json:"pin"`

	ServiceType    *string `json:"service_type"`
	AgentID        *string `json:"selected_agent"`
	CollectionDate *string `json:"collection_date"`
	CollectionTime *string `json:"collection_time"`
	DeliveryDate   *string `json:"delivery_date"`
	DeliveryTime   *string `json:"delivery_time"`

	Duration      *string `json:"duration"`
	PromoCode     *string `json:"promo_code"`
	PaymentMethod *string `json:"payment_method"`
}
