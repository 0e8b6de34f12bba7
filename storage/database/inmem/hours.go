package inmemdb

import (
	"context"
	"sort"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/hours"
)

type hourRepository struct {
	db *hourTable
}

var _ hours.Repository = (*hourRepository)(nil)

func NewHourRepository(db *DB) hours.Repository {
	return &hourRepository{db: db.hour}
}

func (repo *hourRepository) CreateEntry(_ context.Context, e hours.Entry) (hours.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = newID()
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *hourRepository) GetEntry(_ context.Context, id string) (hours.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return hours.Entry{}, hours.ErrNotFound
}

func (repo *hourRepository) QueryEntries(_ context.Context, filter hours.QueryFilter, ordering ...core.DBOrdering) ([]hours.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]hours.Entry, 0)
	for _, e := range repo.db.table {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.ProgramKey != "" && e.ProgramKey != filter.ProgramKey {
			continue
		}
		entries = append(entries, *e)
	}

	ordering = core.AllowedOrderings(ordering, hourOrderingFields)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date"}, {Field: "created_at"}}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareEntries(entries[i], entries[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

var hourOrderingFields = map[string]string{
	"date":       "date",
	"minutes":    "minutes",
	"status":     "status",
	"created_at": "created_at",
}

func compareEntries(a, b hours.Entry, field string) int {
	switch field {
	case "date":
		return compareInts(a.Date.UnixNano(), b.Date.UnixNano())
	case "created_at":
		return compareInts(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	case "minutes":
		return compareInts(int64(a.Minutes), int64(b.Minutes))
	case "status":
		switch {
		case a.Status < b.Status:
			return -1
		case a.Status > b.Status:
			return 1
		}
	}
	return 0
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *hourRepository) ReviewEntry(_ context.Context, id string, rev hours.Review) (hours.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok {
		return hours.Entry{}, hours.ErrNotFound
	}
	if !e.Status.CanTransition(rev.Status) {
		return hours.Entry{}, hours.ErrAlreadyReviewed
	}
	reviewedAt := rev.ReviewedAt
	e.Status = rev.Status
	e.ReviewedByID = rev.ReviewerID
	e.ReviewedAt = &reviewedAt
	return *e, nil
}
