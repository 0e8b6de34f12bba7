package hours_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/user"
	"github.com/cambria/academy/storage/database/inmem"
	"github.com/cambria/academy/testutil"
)

type recordingNotifier struct {
	logged   []hours.Entry
	reviewed []hours.Entry
	err      error
}

func (n *recordingNotifier) HoursLogged(_ context.Context, _ user.User, e hours.Entry) error {
	n.logged = append(n.logged, e)
	return n.err
}

func (n *recordingNotifier) HourReviewed(_ context.Context, _ user.User, e hours.Entry) error {
	n.reviewed = append(n.reviewed, e)
	return n.err
}

type fixture struct {
	svc        *hours.Service
	notifier   *recordingNotifier
	logger     *testutil.Logger
	student    user.User
	instructor user.User
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	logger := &testutil.Logger{}
	notifier := &recordingNotifier{}
	usrSvc := user.NewService(usrRepo, logger)
	return fixture{
		svc:        hours.NewService(inmemdb.NewHourRepository(db), usrSvc, notifier, logger),
		notifier:   notifier,
		logger:     logger,
		student:    testutil.CreateUser(t, usrRepo, "Sam", "sam@cambria.edu", user.RoleStudent, "A", true),
		instructor: testutil.CreateUser(t, usrRepo, "Ivy", "ivy@cambria.edu", user.RoleInstructor, "", true),
	}
}

func selfReport(t *testing.T, sr hours.NewSelfReport) hours.NewSelfReport {
	require.NoError(t, sr.Validate(testutil.NewValidator()))
	return sr
}

func TestNewSelfReport_Validate(t *testing.T) {
	validate := testutil.NewValidator()
	tests := []struct {
		name    string
		sr      hours.NewSelfReport
		wantErr bool
	}{
		{name: "minimal", sr: hours.NewSelfReport{Minutes: 1, ProgramKey: hours.ProgramNailTech}},
		{
			name: "with times",
			sr: hours.NewSelfReport{
				Minutes: 3, ProgramKey: hours.ProgramCosmetology,
				StartedAt: "2026-03-02T09:00:00Z", EndedAt: "2026-03-02T09:02:10Z",
			},
		},
		{name: "zero minutes", sr: hours.NewSelfReport{Minutes: 0, ProgramKey: hours.ProgramNailTech}, wantErr: true},
		{name: "unknown program", sr: hours.NewSelfReport{Minutes: 5, ProgramKey: "BARBERING"}, wantErr: true},
		{name: "bad timestamp", sr: hours.NewSelfReport{Minutes: 5, ProgramKey: hours.ProgramNailTech, StartedAt: "yesterday"}, wantErr: true},
		{
			name: "ends before start",
			sr: hours.NewSelfReport{
				Minutes: 5, ProgramKey: hours.ProgramNailTech,
				StartedAt: "2026-03-02T10:00:00Z", EndedAt: "2026-03-02T09:00:00Z",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := tt.sr
			err := sr.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_LogSelfReported(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e, err := f.svc.LogSelfReported(ctx, f.student, selfReport(t, hours.NewSelfReport{
		Minutes:    3,
		ProgramKey: hours.ProgramCosmetology,
		StartedAt:  "2026-03-02T09:00:00-07:00",
		EndedAt:    "2026-03-02T09:02:10-07:00",
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, hours.StatusPending, e.Status)
	assert.Equal(t, 3, e.Minutes)
	assert.Equal(t, f.student.ID, e.StudentID)
	assert.Equal(t, f.student.ID, e.CreatedByID)
	assert.Empty(t, e.ReviewedByID)
	assert.Nil(t, e.ReviewedAt)
	require.NotNil(t, e.StartedAt)
	assert.Equal(t, time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC), *e.StartedAt)
	assert.Equal(t, *e.StartedAt, e.Date)

	require.Len(t, f.notifier.logged, 1)
	assert.Equal(t, e.ID, f.notifier.logged[0].ID)
}

func TestService_LogSelfReported_notifyFailure(t *testing.T) {
	f := setup(t)
	f.notifier.err = errors.New("mail down")

	e, err := f.svc.LogSelfReported(context.Background(), f.student, selfReport(t, hours.NewSelfReport{
		Minutes: 10, ProgramKey: hours.ProgramNailTech,
	}))
	require.NoError(t, err, "a committed entry is not rolled back by notification failures")
	assert.Equal(t, hours.StatusPending, e.Status)
	assert.Equal(t, 1, f.logger.Count("ERROR"))

	got, err := f.svc.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestService_LogManual(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	validate := testutil.NewValidator()

	tests := []struct {
		name      string
		nm        hours.NewManualEntry
		wantField string
	}{
		{name: "approved on creation", nm: hours.NewManualEntry{StudentID: f.student.ID, Minutes: 90, Date: "2026-03-01", ProgramKey: hours.ProgramCosmetology, Notes: " makeup "}},
		{name: "unknown student", nm: hours.NewManualEntry{StudentID: "nobody", Minutes: 90, Date: "2026-03-01", ProgramKey: hours.ProgramCosmetology}, wantField: "student_id"},
		{name: "staff cannot own hours", nm: hours.NewManualEntry{StudentID: f.instructor.ID, Minutes: 90, Date: "2026-03-01", ProgramKey: hours.ProgramCosmetology}, wantField: "student_id"},
		{name: "bad date", nm: hours.NewManualEntry{StudentID: f.student.ID, Minutes: 90, Date: "03/01/2026", ProgramKey: hours.ProgramCosmetology}, wantField: "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := tt.nm
			err := nm.Validate(validate)
			var e hours.Entry
			if err == nil {
				e, err = f.svc.LogManual(ctx, f.instructor, nm)
			}
			if tt.wantField != "" {
				require.Error(t, err)
				verr, ok := errors.Cause(err).(*core.ValidationError)
				require.True(t, ok)
				require.Len(t, verr.Fields, 1)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, hours.StatusApproved, e.Status)
			assert.Equal(t, f.instructor.ID, e.CreatedByID)
			assert.Equal(t, f.instructor.ID, e.ReviewedByID)
			assert.NotNil(t, e.ReviewedAt)
			assert.Equal(t, "makeup", e.Notes)
			assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), e.Date)
		})
	}
	assert.Empty(t, f.notifier.logged)
}

func TestService_Review(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entry, err := f.svc.LogSelfReported(ctx, f.student, selfReport(t, hours.NewSelfReport{Minutes: 45, ProgramKey: hours.ProgramCosmetology}))
	require.NoError(t, err)

	_, err = f.svc.Review(ctx, f.instructor, entry.ID, hours.StatusPending)
	assert.True(t, core.IsValidationError(err))

	got, err := f.svc.Review(ctx, f.instructor, entry.ID, hours.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, hours.StatusApproved, got.Status)
	assert.Equal(t, f.instructor.ID, got.ReviewedByID)
	assert.NotNil(t, got.ReviewedAt)
	require.Len(t, f.notifier.reviewed, 1)

	// terminal entries stay terminal
	_, err = f.svc.Review(ctx, f.instructor, entry.ID, hours.StatusRejected)
	assert.Equal(t, hours.ErrAlreadyReviewed, errors.Cause(err))
	stored, err := f.svc.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, hours.StatusApproved, stored.Status)
	assert.Len(t, f.notifier.reviewed, 1)

	_, err = f.svc.Review(ctx, f.instructor, "missing", hours.StatusApproved)
	assert.Equal(t, hours.ErrNotFound, errors.Cause(err))
}

func TestService_Progress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	validate := testutil.NewValidator()

	pending, err := f.svc.LogSelfReported(ctx, f.student, selfReport(t, hours.NewSelfReport{Minutes: 30, ProgramKey: hours.ProgramCosmetology}))
	require.NoError(t, err)
	rejected, err := f.svc.LogSelfReported(ctx, f.student, selfReport(t, hours.NewSelfReport{Minutes: 500, ProgramKey: hours.ProgramCosmetology}))
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, f.instructor, rejected.ID, hours.StatusRejected)
	require.NoError(t, err)

	nm := hours.NewManualEntry{StudentID: f.student.ID, Minutes: 120, Date: "2026-03-01", ProgramKey: hours.ProgramNailTech}
	require.NoError(t, nm.Validate(validate))
	_, err = f.svc.LogManual(ctx, f.instructor, nm)
	require.NoError(t, err)

	progress, err := f.svc.Progress(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, progress, 2)

	assert.Equal(t, hours.ProgramCosmetology, progress[0].Program.Key)
	assert.Equal(t, 0, progress[0].ApprovedMinutes)
	assert.Equal(t, pending.Minutes, progress[0].PendingMinutes)
	assert.Equal(t, 1250*60, progress[0].RemainingMinutes())

	assert.Equal(t, hours.ProgramNailTech, progress[1].Program.Key)
	assert.Equal(t, 120, progress[1].ApprovedMinutes)
	assert.Equal(t, 300*60-120, progress[1].RemainingMinutes())
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0.0"},
		{90, "1.5"},
		{61, "1.0"},
		{75000, "1250.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hours.FormatHours(tt.minutes))
	}
}
