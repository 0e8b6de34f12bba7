package hours

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether an entry in s may move to next. Only PENDING entries move.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

type ProgramKey string

const (
	ProgramCosmetology ProgramKey = "COSMETOLOGY"
	ProgramNailTech    ProgramKey = "NAIL_TECH"
)

type Program struct {
	Key           ProgramKey `json:"key"`
	Name          string     `json:"name"`
	RequiredHours int        `json:"required_hours"`
}

var Programs = []Program{
	{Key: ProgramCosmetology, Name: "Cosmetology", RequiredHours: 1250},
	{Key: ProgramNailTech, Name: "Nail Technology", RequiredHours: 300},
}

func (k ProgramKey) IsValid() bool {
	_, ok := GetProgram(k)
	return ok
}

func GetProgram(key ProgramKey) (Program, bool) {
	for _, p := range Programs {
		if p.Key == key {
			return p, true
		}
	}
	return Program{}, false
}

// Entry is a claim of training minutes by a student.
// ReviewedByID and ReviewedAt are set together, and only on APPROVED or REJECTED entries.
type Entry struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	Minutes      int        `json:"minutes"`
	Date         time.Time  `json:"date"`
	StartedAt    *time.Time `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	Status       Status     `json:"status"`
	ProgramKey   ProgramKey `json:"program_key"`
	Notes        string     `json:"notes"`
	CreatedByID  string     `json:"created_by_id"`
	ReviewedByID string     `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Review is the outcome recorded on a PENDING entry.
type Review struct {
	Status     Status
	ReviewerID string
	ReviewedAt time.Time
}

// NewSelfReport is submitted by a student at the end of a clock session.
type NewSelfReport struct {
	Minutes    int        `json:"minutes" validate:"gt=0"`
	ProgramKey ProgramKey `json:"program_key" validate:"required,program"`
	StartedAt  string     `json:"started_at" validate:"omitempty,rfc3339"`
	EndedAt    string     `json:"ended_at" validate:"omitempty,rfc3339"`

	startedAt *time.Time
	endedAt   *time.Time
}

func (sr *NewSelfReport) Validate(validate *validator.Validate) error {
	sr.ProgramKey = ProgramKey(core.CleanString(string(sr.ProgramKey)))
	sr.StartedAt = core.CleanString(sr.StartedAt)
	sr.EndedAt = core.CleanString(sr.EndedAt)
	if err := validate.Struct(sr); err != nil {
		return err
	}

	if sr.StartedAt != "" {
		t, err := core.ParseTimestamp(sr.StartedAt)
		if err != nil {
			return core.NewValidationError(errors.New("Invalid start time"))
		}
		sr.startedAt = &t
	}
	if sr.EndedAt != "" {
		t, err := core.ParseTimestamp(sr.EndedAt)
		if err != nil {
			return core.NewValidationError(errors.New("Invalid end time"))
		}
		sr.endedAt = &t
	}
	if sr.startedAt != nil && sr.endedAt != nil && sr.endedAt.Before(*sr.startedAt) {
		return core.NewValidationError(nil, core.FieldError{Field: "ended_at", Error: "ended_at must not be before started_at"})
	}
	return nil
}

// NewManualEntry is recorded by staff on behalf of a student; it is approved on creation.
type NewManualEntry struct {
	StudentID  string     `json:"student_id" validate:"required"`
	Minutes    int        `json:"minutes" validate:"gt=0"`
	Date       string     `json:"date" validate:"required"`
	ProgramKey ProgramKey `json:"program_key" validate:"required,program"`
	Notes      string     `json:"notes" validate:"max=1000"`

	date time.Time
}

// manualDateLayout is accepted besides RFC 3339 for calendar-only dates.
const manualDateLayout = "2006-01-02"

func (nm *NewManualEntry) Validate(validate *validator.Validate) error {
	nm.StudentID = core.CleanString(nm.StudentID)
	nm.Date = core.CleanString(nm.Date)
	nm.ProgramKey = ProgramKey(core.CleanString(string(nm.ProgramKey)))
	nm.Notes = core.CleanString(nm.Notes)
	if err := validate.Struct(nm); err != nil {
		return err
	}

	if t, err := core.ParseTimestamp(nm.Date); err == nil {
		nm.date = t
	} else if t, err := time.Parse(manualDateLayout, nm.Date); err == nil {
		nm.date = t.UTC()
	} else {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be YYYY-MM-DD or an RFC 3339 timestamp"})
	}
	return nil
}

// ReviewRequest carries a reviewer's decision on a PENDING entry.
type ReviewRequest struct {
	Decision Status `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
}

func (rr *ReviewRequest) Validate(validate *validator.Validate) error {
	rr.Decision = Status(core.CleanString(string(rr.Decision)))
	return validate.Struct(rr)
}

// QueryFilter applies AND between its set fields.
type QueryFilter struct {
	StudentID  string     `query:"student_id"`
	Status     Status     `query:"status"`
	ProgramKey ProgramKey `query:"program_key"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = Status(core.CleanString(string(qf.Status)))
	qf.ProgramKey = ProgramKey(core.CleanString(string(qf.ProgramKey)))
}

// ProgramProgress sums a student's minutes for one program.
type ProgramProgress struct {
	Program         Program `json:"program"`
	ApprovedMinutes int     `json:"approved_minutes"`
	PendingMinutes  int     `json:"pending_minutes"`
}

// RemainingMinutes is what is left to reach the program's required hours, never negative.
func (pp ProgramProgress) RemainingMinutes() int {
	left := pp.Program.RequiredHours*60 - pp.ApprovedMinutes
	if left < 0 {
		return 0
	}
	return left
}
