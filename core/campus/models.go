package campus

import (
	"math"
	"time"
)

// MinRadiusMeters is the smallest enforcement radius accepted while enforcement is enabled.
const MinRadiusMeters = 25

// Location is the campus geofence: a center, a radius and an on/off switch.
type Location struct {
	ID           string    `json:"id"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	RadiusMeters float64   `json:"radius_meters"`
	Label        string    `json:"label"`
	IsEnabled    bool      `json:"is_enabled"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultLocation is served whenever no record exists or it cannot be read.
var DefaultLocation = Location{
	ID:           "default",
	Lat:          41.736258,
	Lng:          -111.857516,
	RadiusMeters: 150,
	Label:        "Campus",
	IsEnabled:    false,
	UpdatedAt:    time.Unix(0, 0).UTC(),
}

// LocationUpdate is a partial update. Nil fields keep the stored value.
// A supplied number that could not be parsed is carried as NaN.
type LocationUpdate struct {
	Lat          *float64
	Lng          *float64
	RadiusMeters *float64
	Label        *string
	IsEnabled    *bool
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
