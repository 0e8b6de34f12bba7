package campus

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
)

var (
	ErrNotFound = errors.New("campus location not found")

	errInvalidWhileEnabled = errors.New("Latitude, longitude, and radius must be valid numbers when enforcement is enabled.")

	NowFunc = time.Now // mockable
)

type (
	// Repository stores the single live Location.
	Repository interface {
		// LatestLocation returns the most recently updated record or ErrNotFound.
		LatestLocation(ctx context.Context) (Location, error)
		CreateLocation(ctx context.Context, loc Location) (Location, error)
		UpdateLocation(ctx context.Context, loc Location) (Location, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the live location. It never fails: a missing or unreadable record yields DefaultLocation.
func (svc *Service) Get(ctx context.Context) Location {
	loc, err := svc.repo.LatestLocation(ctx)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			svc.logger.Warn(fmt.Sprintf("reading campus location, serving default: %v", err), err)
		}
		return DefaultLocation
	}
	return loc
}

// Upsert merges upd into the live record field by field and saves it.
// While enforcement is (or becomes) enabled, the merged record must be a valid geofence;
// otherwise nothing is written.
func (svc *Service) Upsert(ctx context.Context, upd LocationUpdate) (Location, error) {
	current, err := svc.repo.LatestLocation(ctx)
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Location{}, errors.Wrap(err, "reading campus location")
		}
		current = DefaultLocation
	}

	merged, invalid := merge(current, upd)
	if merged.IsEnabled {
		if len(invalid) > 0 {
			return Location{}, core.NewValidationError(errInvalidWhileEnabled)
		}
		if flds := validateEnabled(merged); len(flds) > 0 {
			return Location{}, core.NewValidationError(nil, flds...)
		}
	}
	merged.UpdatedAt = NowFunc().UTC()

	if exists {
		loc, err := svc.repo.UpdateLocation(ctx, merged)
		return loc, errors.Wrap(err, "updating campus location")
	}
	merged.ID = ""
	loc, err := svc.repo.CreateLocation(ctx, merged)
	return loc, errors.Wrap(err, "creating campus location")
}

// merge applies upd over base and returns the names of the supplied fields that were not finite numbers.
func merge(base Location, upd LocationUpdate) (Location, []string) {
	var invalid []string
	setNumber := func(name string, dst *float64, val *float64) {
		if val == nil {
			return
		}
		if !isFinite(*val) {
			invalid = append(invalid, name)
			return
		}
		*dst = *val
	}

	merged := base
	setNumber("lat", &merged.Lat, upd.Lat)
	setNumber("lng", &merged.Lng, upd.Lng)
	setNumber("radius_meters", &merged.RadiusMeters, upd.RadiusMeters)
	if upd.Label != nil {
		if label := core.CleanString(*upd.Label); label != "" {
			merged.Label = label
		}
	}
	if upd.IsEnabled != nil {
		merged.IsEnabled = *upd.IsEnabled
	}
	return merged, invalid
}

func validateEnabled(loc Location) []core.FieldError {
	var flds []core.FieldError
	if loc.Lat < -90 || loc.Lat > 90 {
		flds = append(flds, core.FieldError{Field: "lat", Error: "lat must be between -90 and 90"})
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		flds = append(flds, core.FieldError{Field: "lng", Error: "lng must be between -180 and 180"})
	}
	if loc.RadiusMeters < MinRadiusMeters {
		flds = append(flds, core.FieldError{
			Field: "radius_meters",
			Error: fmt.Sprintf("radius_meters must be at least %d", MinRadiusMeters),
		})
	}
	return flds
}
