package hours

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/user"
)

var (
	ErrNotFound        = errors.New("hour entry not found")
	ErrAlreadyReviewed = errors.New("hour entry has already been reviewed")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		GetEntry(ctx context.Context, id string) (Entry, error)
		QueryEntries(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Entry, error)
		// ReviewEntry records rev on a PENDING entry in a single conditional write.
		// It fails with ErrAlreadyReviewed when the entry is no longer PENDING and ErrNotFound when it does not exist.
		ReviewEntry(ctx context.Context, id string, rev Review) (Entry, error)
	}

	// Notifier fans out the notifications of committed hour mutations.
	Notifier interface {
		HoursLogged(ctx context.Context, student user.User, e Entry) error
		HourReviewed(ctx context.Context, reviewer user.User, e Entry) error
	}

	// Students looks up the owner of manual entries.
	Students interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		students Students
		notifier Notifier
		logger   core.Logger
	}
)

func NewService(repo Repository, students Students, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		students: students,
		notifier: notifier,
		logger:   logger,
	}
}

// LogSelfReported records a PENDING entry for student and notifies active staff. sr must be validated.
func (svc *Service) LogSelfReported(ctx context.Context, student user.User, sr NewSelfReport) (Entry, error) {
	now := NowFunc().UTC()
	date := now
	if sr.startedAt != nil {
		date = *sr.startedAt
	}

	e, err := svc.repo.CreateEntry(ctx, Entry{
		StudentID:   student.ID,
		Minutes:     sr.Minutes,
		Date:        date,
		StartedAt:   sr.startedAt,
		EndedAt:     sr.endedAt,
		Status:      StatusPending,
		ProgramKey:  sr.ProgramKey,
		CreatedByID: student.ID,
		CreatedAt:   now,
	})
	if err != nil {
		return Entry{}, errors.Wrap(err, "creating hour entry")
	}

	if err := svc.notifier.HoursLogged(ctx, student, e); err != nil {
		svc.logger.Error(fmt.Sprintf("notifying hours logged: %v", err), err, student)
	}
	return e, nil
}

// LogManual records an already APPROVED entry on behalf of a student. nm must be validated.
func (svc *Service) LogManual(ctx context.Context, staff user.User, nm NewManualEntry) (Entry, error) {
	student, err := svc.students.GetByID(ctx, nm.StudentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Entry{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student not found"})
		}
		return Entry{}, errors.Wrap(err, "getting student")
	}
	if !student.IsStudent() {
		return Entry{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "user is not a student"})
	}

	now := NowFunc().UTC()
	e, err := svc.repo.CreateEntry(ctx, Entry{
		StudentID:    student.ID,
		Minutes:      nm.Minutes,
		Date:         nm.date,
		Status:       StatusApproved,
		ProgramKey:   nm.ProgramKey,
		Notes:        nm.Notes,
		CreatedByID:  staff.ID,
		ReviewedByID: staff.ID,
		ReviewedAt:   &now,
		CreatedAt:    now,
	})
	return e, errors.Wrap(err, "creating hour entry")
}

// Review approves or rejects a PENDING entry, then notifies its student.
func (svc *Service) Review(ctx context.Context, reviewer user.User, entryID string, decision Status) (Entry, error) {
	if !decision.IsTerminal() {
		return Entry{}, core.NewValidationError(nil, core.FieldError{Field: "decision", Error: "decision must be one of [APPROVED REJECTED]"})
	}

	e, err := svc.repo.ReviewEntry(ctx, entryID, Review{
		Status:     decision,
		ReviewerID: reviewer.ID,
		ReviewedAt: NowFunc().UTC(),
	})
	if err != nil {
		return Entry{}, err
	}

	if err := svc.notifier.HourReviewed(ctx, reviewer, e); err != nil {
		svc.logger.Error(fmt.Sprintf("notifying hour review: %v", err), err, reviewer)
	}
	return e, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Entry, error) {
	return svc.repo.GetEntry(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx, filter, ordering...)
}

// Progress sums a student's approved and pending minutes for every program.
func (svc *Service) Progress(ctx context.Context, studentID string) ([]ProgramProgress, error) {
	entries, err := svc.repo.QueryEntries(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, errors.Wrap(err, "querying hour entries")
	}

	byProgram := make(map[ProgramKey]*ProgramProgress, len(Programs))
	progress := make([]ProgramProgress, len(Programs))
	for i, p := range Programs {
		progress[i].Program = p
		byProgram[p.Key] = &progress[i]
	}
	for _, e := range entries {
		pp, ok := byProgram[e.ProgramKey]
		if !ok {
			continue
		}
		switch e.Status {
		case StatusApproved:
			pp.ApprovedMinutes += e.Minutes
		case StatusPending:
			pp.PendingMinutes += e.Minutes
		}
	}
	return progress, nil
}

// FormatHours renders minutes as hours with one decimal, e.g. 90 -> "1.5".
func FormatHours(minutes int) string {
	return fmt.Sprintf("%.1f", math.Round(float64(minutes)/6)/10)
}
