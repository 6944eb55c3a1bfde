package wizard

import (
	"regexp"

	"repairhub/models"
)

var imeiPattern = regexp.MustCompile(`^\d{15}$`)

// Messages shown next to the field that failed validation.
const (
	MsgIMEIRequired = "IMEI number is required."
	MsgIMEIFormat   = "IMEI must be a 15-digit number."
	MsgNotServiced  = "Service not available in this area."
	MsgOutOfBounds  = "Selected location is outside the service area."
)

// ValidateIMEI returns a user-facing message, or "" when s is a valid IMEI.
func ValidateIMEI(s string) string {
	switch {
	case s == "":
		return MsgIMEIRequired
	case !imeiPattern.MatchString(s):
		return MsgIMEIFormat
	}
	return ""
}

// Missing lists the fields that keep step from being complete. Unknown steps
// and unknown service types report themselves as missing.
func Missing(form models.BookingForm, step int) []string {
	var out []string
	need := func(ok bool, field string) {
		if !ok {
			out = append(out, field)
		}
	}

	switch step {
	case models.StepDeviceDetails:
		d := form.Device
		need(d.CategoryID != "", "category")
		need(d.BrandID != "", "brand")
		need(d.Model != "", "model")
		need(len(d.Faults) > 0, "faults")
		need(ValidateIMEI(d.IMEI) == "", "imei_number")
	case models.StepLocation:
		l := form.Location
		need(l.Pincode != "", "address_pincode")
		need(l.City != "", "address_city")
		need(l.State != "", "address_state")
		need(l.Street != "", "address_street")
		need(l.Latitude != nil, "address_latitude")
		need(l.Longitude != nil, "address_longitude")
		need(l.CityID != "", "city_id")
		need(!l.OutOfBounds, "location")
	case models.StepServiceType:
		s := form.Service
		switch s.ServiceType {
		case models.ServiceLocalDropoff, models.ServicePostal:
			need(s.AgentID != "", "selected_agent")
		case models.ServiceCollectionDelivery:
			need(s.AgentID != "", "selected_agent")
			need(form.Location.Street != "", "address_street")
			need(form.Location.Pincode != "", "address_pincode")
			need(s.CollectionDate != "", "collection_date")
			need(s.CollectionTime != "", "collection_time")
			need(s.DeliveryDate != "", "delivery_date")
			need(s.DeliveryTime != "", "delivery_time")
		default:
			out = append(out, "service_type")
		}
	case models.StepDuration:
		need(form.Duration.Name != "", "duration")
	case models.StepPayment:
		need(form.Payment.Method != "", "payment_method")
	default:
		out = append(out, "step")
	}
	return out
}

// Complete reports whether step's completeness predicate holds.
func Complete(form models.BookingForm, step int) bool {
	return len(Missing(form, step)) == 0
}

// AgentBased reports whether a service type needs a ranked agent.
func AgentBased(serviceType string) bool {
	switch serviceType {
	case models.ServiceLocalDropoff, models.ServiceCollectionDelivery, models.ServicePostal:
		return true
	}
	return false
}
