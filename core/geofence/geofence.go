// Package geofence decides whether a device position may clock in or out against the campus location.
package geofence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core/campus"
)

const EarthRadiusMeters = 6371000.0

// DefaultLocateTimeout bounds a single position request.
const DefaultLocateTimeout = 10 * time.Second

var (
	ErrNoCapability        = errors.New("geolocation not supported")
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("position request timed out")
)

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Locator supplies the current device position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// LocatorFunc adapts a function to a Locator.
type LocatorFunc func(ctx context.Context) (Position, error)

func (f LocatorFunc) Locate(ctx context.Context) (Position, error) { return f(ctx) }

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMeters is the great-circle (haversine) distance between a and b.
func DistanceMeters(a, b Position) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// IsWithinAllowedRadius is always true while enforcement is disabled.
func IsWithinAllowedRadius(pos Position, loc campus.Location) bool {
	if !loc.IsEnabled {
		return true
	}
	return DistanceMeters(pos, Position{Lat: loc.Lat, Lng: loc.Lng}) <= loc.RadiusMeters
}

type Reason string

const (
	ReasonNoCapability     Reason = "NO_CAPABILITY"
	ReasonPermissionDenied Reason = "PERMISSION_DENIED"
	ReasonUnavailable      Reason = "UNAVAILABLE"
	ReasonOutOfRange       Reason = "OUT_OF_RANGE"
)

// Denial is returned when a clock action is refused by the geofence.
type Denial struct {
	Reason   Reason
	Hint     string
	Distance float64 // meters, set for ReasonOutOfRange
}

func (d *Denial) Error() string { return d.Hint }

// OutOfRangeHint is the message shown to a user outside the allowed radius.
func OutOfRangeHint(loc campus.Location) string {
	label := loc.Label
	if label == "" {
		label = "campus"
	}
	return fmt.Sprintf("Clock-in only allowed within %dm of %s.", int(math.Round(loc.RadiusMeters)), label)
}

// Check locates the device and returns a *Denial unless it is within loc.
// Enforcement disabled means no position is requested. Any failure to locate denies.
func Check(ctx context.Context, locator Locator, loc campus.Location, timeout time.Duration) error {
	if !loc.IsEnabled {
		return nil
	}
	if locator == nil {
		return denial(ErrNoCapability)
	}
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := locator.Locate(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return denial(err)
	}
	if !finite(pos.Lat) || !finite(pos.Lng) {
		return denial(ErrPositionUnavailable)
	}

	dist := DistanceMeters(pos, Position{Lat: loc.Lat, Lng: loc.Lng})
	if !(dist <= loc.RadiusMeters) {
		return &Denial{Reason: ReasonOutOfRange, Hint: OutOfRangeHint(loc), Distance: dist}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func denial(err error) *Denial {
	switch errors.Cause(err) {
	case ErrNoCapability:
		return &Denial{Reason: ReasonNoCapability, Hint: "Geolocation is required to clock in."}
	case ErrPermissionDenied:
		return &Denial{Reason: ReasonPermissionDenied, Hint: "Location access required to clock in."}
	case ErrTimeout, context.DeadlineExceeded:
		return &Denial{Reason: ReasonUnavailable, Hint: "Timed out determining your location. Try again."}
	default:
		return &Denial{Reason: ReasonUnavailable, Hint: "Unable to determine your location. Try again."}
	}
}
