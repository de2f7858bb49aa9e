// README: Common value types shared across modules.
package types

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ID is an opaque entity identifier. New IDs are UUIDs but the type makes no
// promise beyond string equality.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

// Money is an amount in minor units (cents) plus an ISO currency code.
type Money struct {
	Amount   int64  `json:"amount_cents"`
	Currency string `json:"currency"`
}

// Dollars renders the amount in major units for display payloads.
func (m Money) Dollars() float64 {
	return float64(m.Amount) / 100.0
}

// Address is a structured postal address. Lat/Lng are optional; when present
// they were supplied by the client, never geocoded server-side.
type Address struct {
	Label  string   `json:"label,omitempty"`
	Street string   `json:"street"`
	City   string   `json:"city"`
	State  string   `json:"state"`
	Zip    string   `json:"zip"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
}

// GeoPoint is a captured coordinate pair.
type GeoPoint struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ValidCoordinates reports whether both values are finite real numbers inside
// the lat/lng ranges. Zero is a legitimate coordinate on either axis.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
