package wizard

import (
	"math"
	"strings"
	"unicode"

	"repairhub/models"
)

// PinTolerance is the half-width, in degrees, of the box around a city centre
// inside which a dropped pin is accepted. It is a lat/lng square, not a radius.
const PinTolerance = 0.1

// NormalizePostcode strips all whitespace and upper-cases the code.
func NormalizePostcode(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

// ResolveLocation applies a postcode lookup to loc. A nil city means the code
// is not serviced: every resolved field is cleared and the location is marked
// unchecked. A match moves the pin to the city centre and clears the street.
func ResolveLocation(loc models.Location, code string, city *models.ServiceCity) models.Location {
	loc.Pincode = code
	loc.OutOfBounds = false

	if city == nil {
		loc.City = ""
		loc.State = ""
		loc.CityID = ""
		loc.StateID = ""
		loc.Latitude = nil
		loc.Longitude = nil
		loc.CityCenter = nil
		loc.Checked = false
		return loc
	}

	loc.City = city.CityName
	loc.State = city.StateName
	loc.CityID = city.CityID
	loc.StateID = city.StateID
	loc.Latitude = copyFloat(city.Latitude)
	loc.Longitude = copyFloat(city.Longitude)
	loc.CityCenter = nil
	if city.Latitude != nil && city.Longitude != nil {
		loc.CityCenter = &models.Coordinate{Lat: *city.Latitude, Lng: *city.Longitude}
	}
	loc.Street = ""
	loc.Checked = true
	return loc
}

// DropPin places the customer's pin. Pins outside the city box, or dropped
// before a city is resolved, clear the coordinates and flag the location.
func DropPin(loc models.Location, lat, lng float64) models.Location {
	if !WithinBounds(loc.CityCenter, lat, lng) {
		loc.Latitude = nil
		loc.Longitude = nil
		loc.OutOfBounds = true
		return loc
	}
	loc.Latitude = &lat
	loc.Longitude = &lng
	loc.OutOfBounds = false
	return loc
}

// WithinBounds reports whether (lat, lng) lies strictly inside the box of
// PinTolerance degrees around center.
func WithinBounds(center *models.Coordinate, lat, lng float64) bool {
	if center == nil {
		return false
	}
	return math.Abs(lat-center.Lat) < PinTolerance && math.Abs(lng-center.Lng) < PinTolerance
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
