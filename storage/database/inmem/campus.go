package inmemdb

import (
	"context"

	"github.com/cambria/academy/core/campus"
)

type locationRepository struct {
	db *locationTable
}

var _ campus.Repository = (*locationRepository)(nil)

func NewLocationRepository(db *DB) campus.Repository {
	return &locationRepository{db: db.location}
}

func (repo *locationRepository) LatestLocation(_ context.Context) (campus.Location, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var latest *campus.Location
	for _, loc := range repo.db.table {
		if latest == nil || loc.UpdatedAt.After(latest.UpdatedAt) {
			latest = loc
		}
	}
	if latest == nil {
		return campus.Location{}, campus.ErrNotFound
	}
	return *latest, nil
}

func (repo *locationRepository) CreateLocation(_ context.Context, loc campus.Location) (campus.Location, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	loc.ID = newID()
	repo.db.table[loc.ID] = &loc
	return loc, nil
}

func (repo *locationRepository) UpdateLocation(_ context.Context, loc campus.Location) (campus.Location, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[loc.ID]; !ok {
		return campus.Location{}, campus.ErrNotFound
	}
	repo.db.table[loc.ID] = &loc
	return loc, nil
}

