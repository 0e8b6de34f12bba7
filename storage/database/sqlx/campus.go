package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/campus"
)

const locationColumns = "id, lat, lng, radius_meters, label, is_enabled, updated_at"

type locationRow struct {
	ID           string    `db:"id"`
	Lat          float64   `db:"lat"`
	Lng          float64   `db:"lng"`
	RadiusMeters float64   `db:"radius_meters"`
	Label        string    `db:"label"`
	IsEnabled    bool      `db:"is_enabled"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r locationRow) toLocation() campus.Location {
	return campus.Location{
		ID:           r.ID,
		Lat:          r.Lat,
		Lng:          r.Lng,
		RadiusMeters: r.RadiusMeters,
		Label:        r.Label,
		IsEnabled:    r.IsEnabled,
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type locationRepository struct {
	db core.DBExecutor
}

var _ campus.Repository = (*locationRepository)(nil)

func NewLocationRepository(db core.DBExecutor) campus.Repository {
	return &locationRepository{db: db}
}

func (repo *locationRepository) LatestLocation(ctx context.Context) (campus.Location, error) {
	var row locationRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+locationColumns+" FROM clock_locations ORDER BY updated_at DESC LIMIT 1")
	if err == sql.ErrNoRows {
		return campus.Location{}, campus.ErrNotFound
	}
	if err != nil {
		return campus.Location{}, errors.Wrap(err, "selecting clock location")
	}
	return row.toLocation(), nil
}

func (repo *locationRepository) CreateLocation(ctx context.Context, loc campus.Location) (campus.Location, error) {
	loc.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO clock_locations (`+locationColumns+`)
		VALUES (:id, :lat, :lng, :radius_meters, :label, :is_enabled, :updated_at)`,
		locationRow(loc),
	)
	if err != nil {
		return campus.Location{}, errors.Wrap(err, "inserting clock location")
	}
	return loc, nil
}

func (repo *locationRepository) UpdateLocation(ctx context.Context, loc campus.Location) (campus.Location, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE clock_locations
		SET lat = :lat, lng = :lng, radius_meters = :radius_meters, label = :label,
		    is_enabled = :is_enabled, updated_at = :updated_at
		WHERE id = :id`,
		locationRow(loc),
	)
	if err != nil {
		return campus.Location{}, errors.Wrap(err, "updating clock location")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return campus.Location{}, campus.ErrNotFound
	}
	return loc, nil
}
