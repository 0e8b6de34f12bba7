package geofence

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/core/campus"
)

var center = Position{Lat: campus.DefaultLocation.Lat, Lng: campus.DefaultLocation.Lng}

func enabledLocation() campus.Location {
	loc := campus.DefaultLocation
	loc.IsEnabled = true
	return loc
}

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want float64
	}{
		{name: "same point", a: center, b: center, want: 0},
		{name: "50m north", a: center, b: Position{Lat: center.Lat + 0.00045, Lng: center.Lng}, want: 50.04},
		{name: "one degree of latitude", a: Position{Lat: 0, Lng: 0}, b: Position{Lat: 1, Lng: 0}, want: 111194.93},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceMeters(tt.a, tt.b), 0.1)
			assert.InDelta(t, DistanceMeters(tt.a, tt.b), DistanceMeters(tt.b, tt.a), 1e-9)
		})
	}
}

func TestIsWithinAllowedRadius(t *testing.T) {
	far := Position{Lat: 0, Lng: 0}
	near := Position{Lat: center.Lat + 0.00045, Lng: center.Lng}

	assert.True(t, IsWithinAllowedRadius(far, campus.DefaultLocation), "disabled enforcement allows anywhere")
	assert.True(t, IsWithinAllowedRadius(near, enabledLocation()))
	assert.False(t, IsWithinAllowedRadius(far, enabledLocation()))

	onEdge := enabledLocation()
	onEdge.RadiusMeters = DistanceMeters(near, center)
	assert.True(t, IsWithinAllowedRadius(near, onEdge), "distance equal to radius is inside")
}

func TestCheck(t *testing.T) {
	at := func(p Position) Locator {
		return LocatorFunc(func(context.Context) (Position, error) { return p, nil })
	}
	failing := func(err error) Locator {
		return LocatorFunc(func(context.Context) (Position, error) { return Position{}, err })
	}
	blocking := LocatorFunc(func(ctx context.Context) (Position, error) {
		<-ctx.Done()
		return Position{}, ctx.Err()
	})

	tests := []struct {
		name       string
		locator    Locator
		loc        campus.Location
		wantReason Reason
	}{
		{name: "disabled skips locating", locator: failing(ErrNoCapability), loc: campus.DefaultLocation},
		{name: "inside", locator: at(Position{Lat: center.Lat + 0.00045, Lng: center.Lng}), loc: enabledLocation()},
		{name: "outside", locator: at(Position{Lat: center.Lat + 0.0018, Lng: center.Lng}), loc: enabledLocation(), wantReason: ReasonOutOfRange},
		{name: "no locator", locator: nil, loc: enabledLocation(), wantReason: ReasonNoCapability},
		{name: "no capability", locator: failing(ErrNoCapability), loc: enabledLocation(), wantReason: ReasonNoCapability},
		{name: "permission denied", locator: failing(ErrPermissionDenied), loc: enabledLocation(), wantReason: ReasonPermissionDenied},
		{name: "unavailable", locator: failing(ErrPositionUnavailable), loc: enabledLocation(), wantReason: ReasonUnavailable},
		{name: "timeout", locator: blocking, loc: enabledLocation(), wantReason: ReasonUnavailable},
		{name: "NaN position", locator: at(Position{Lat: math.NaN(), Lng: math.NaN()}), loc: enabledLocation(), wantReason: ReasonUnavailable},
		{name: "NaN latitude", locator: at(Position{Lat: math.NaN(), Lng: center.Lng}), loc: enabledLocation(), wantReason: ReasonUnavailable},
		{name: "infinite longitude", locator: at(Position{Lat: center.Lat, Lng: math.Inf(1)}), loc: enabledLocation(), wantReason: ReasonUnavailable},
		{name: "negative infinite latitude", locator: at(Position{Lat: math.Inf(-1), Lng: center.Lng}), loc: enabledLocation(), wantReason: ReasonUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(context.Background(), tt.locator, tt.loc, 20*time.Millisecond)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			d, ok := err.(*Denial)
			require.True(t, ok, "want *Denial, got %T", err)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.NotEmpty(t, d.Hint)
		})
	}
}

func TestOutOfRangeHint(t *testing.T) {
	assert.Equal(t, "Clock-in only allowed within 150m of Campus.", OutOfRangeHint(campus.DefaultLocation))

	loc := campus.DefaultLocation
	loc.Label = ""
	loc.RadiusMeters = 80
	assert.Equal(t, "Clock-in only allowed within 80m of campus.", OutOfRangeHint(loc))
}
