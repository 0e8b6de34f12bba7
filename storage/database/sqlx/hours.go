package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/hours"
)

const hourColumns = "id, student_id, minutes, date, started_at, ended_at, status, program_key, notes, " +
	"created_by_id, reviewed_by_id, reviewed_at, created_at"

var hourOrderingFields = map[string]string{
	"date":       "date",
	"minutes":    "minutes",
	"status":     "status",
	"created_at": "created_at",
}

type hourRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	Minutes      int         `db:"minutes"`
	Date         time.Time   `db:"date"`
	StartedAt    null.Time   `db:"started_at"`
	EndedAt      null.Time   `db:"ended_at"`
	Status       string      `db:"status"`
	ProgramKey   string      `db:"program_key"`
	Notes        null.String `db:"notes"`
	CreatedByID  string      `db:"created_by_id"`
	ReviewedByID null.String `db:"reviewed_by_id"`
	ReviewedAt   null.Time   `db:"reviewed_at"`
	CreatedAt    time.Time   `db:"created_at"`
}

func newHourRow(e hours.Entry) hourRow {
	return hourRow{
		ID:           e.ID,
		StudentID:    e.StudentID,
		Minutes:      e.Minutes,
		Date:         e.Date,
		StartedAt:    null.TimeFromPtr(e.StartedAt),
		EndedAt:      null.TimeFromPtr(e.EndedAt),
		Status:       string(e.Status),
		ProgramKey:   string(e.ProgramKey),
		Notes:        null.NewString(e.Notes, e.Notes != ""),
		CreatedByID:  e.CreatedByID,
		ReviewedByID: null.NewString(e.ReviewedByID, e.ReviewedByID != ""),
		ReviewedAt:   null.TimeFromPtr(e.ReviewedAt),
		CreatedAt:    e.CreatedAt,
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

func (r hourRow) toEntry() hours.Entry {
	return hours.Entry{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Minutes:      r.Minutes,
		Date:         r.Date.UTC(),
		StartedAt:    utcPtr(r.StartedAt),
		EndedAt:      utcPtr(r.EndedAt),
		Status:       hours.Status(r.Status),
		ProgramKey:   hours.ProgramKey(r.ProgramKey),
		Notes:        r.Notes.String,
		CreatedByID:  r.CreatedByID,
		ReviewedByID: r.ReviewedByID.String,
		ReviewedAt:   utcPtr(r.ReviewedAt),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type hourRepository struct {
	db core.DBExecutor
}

var _ hours.Repository = (*hourRepository)(nil)

func NewHourRepository(db core.DBExecutor) hours.Repository {
	return &hourRepository{db: db}
}

func (repo *hourRepository) CreateEntry(ctx context.Context, e hours.Entry) (hours.Entry, error) {
	e.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO hour_entries (`+hourColumns+`)
		VALUES (:id, :student_id, :minutes, :date, :started_at, :ended_at, :status, :program_key, :notes,
		        :created_by_id, :reviewed_by_id, :reviewed_at, :created_at)`,
		newHourRow(e),
	)
	if err != nil {
		return hours.Entry{}, errors.Wrap(err, "inserting hour entry")
	}
	return e, nil
}

func (repo *hourRepository) GetEntry(ctx context.Context, id string) (hours.Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return hours.Entry{}, hours.ErrNotFound
	}
	var row hourRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+hourColumns+" FROM hour_entries WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return hours.Entry{}, hours.ErrNotFound
	}
	if err != nil {
		return hours.Entry{}, errors.Wrap(err, "selecting hour entry")
	}
	return row.toEntry(), nil
}

func (repo *hourRepository) QueryEntries(ctx context.Context, filter hours.QueryFilter, ordering ...core.DBOrdering) ([]hours.Entry, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		if _, err := uuid.Parse(filter.StudentID); err != nil {
			return []hours.Entry{}, nil
		}
		args = append(args, filter.StudentID)
		conds = append(conds, "student_id = "+placeholder(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, "status = "+placeholder(len(args)))
	}
	if filter.ProgramKey != "" {
		args = append(args, string(filter.ProgramKey))
		conds = append(conds, "program_key = "+placeholder(len(args)))
	}

	q := "SELECT " + hourColumns + " FROM hour_entries"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	ordering = core.AllowedOrderings(ordering, hourOrderingFields)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date"}, {Field: "created_at"}}
	}
	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		orderBy = append(orderBy, ord.String())
	}
	q += " ORDER BY " + strings.Join(append(orderBy, "id"), ", ")

	var rows []hourRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting hour entries")
	}
	entries := make([]hours.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

func (repo *hourRepository) ReviewEntry(ctx context.Context, id string, rev hours.Review) (hours.Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return hours.Entry{}, hours.ErrNotFound
	}

	var row hourRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE hour_entries
		SET status = $1, reviewed_by_id = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+hourColumns,
		string(rev.Status), rev.ReviewerID, rev.ReviewedAt, id, string(hours.StatusPending),
	)
	if err == nil {
		return row.toEntry(), nil
	}
	if err != sql.ErrNoRows {
		return hours.Entry{}, errors.Wrap(err, "reviewing hour entry")
	}

	// nothing updated: tell a missing entry from an already reviewed one
	if _, err = repo.GetEntry(ctx, id); err != nil {
		return hours.Entry{}, err
	}
	return hours.Entry{}, hours.ErrAlreadyReviewed
}
