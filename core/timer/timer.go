// Package timer holds a student's clock-in session on the device and turns it into a log-hours submission.
//
// A session survives restarts through its Store. It is cleared only once the submission succeeded,
// so a failed stop can be retried without losing the elapsed time. Sessions are local to one device:
// two devices may run concurrent sessions for the same student.
package timer

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/geofence"
	"github.com/cambria/academy/core/hours"
)

var (
	ErrAlreadyRunning = errors.New("a clock session is already running")
	ErrNotRunning     = errors.New("no clock session is running")

	NowFunc = time.Now // mockable
)

// Session is a running clock-in.
type Session struct {
	StartedAt  time.Time        `json:"started_at"`
	ProgramKey hours.ProgramKey `json:"program_key"`
}

// Elapsed is the whole seconds elapsed at now, never negative.
func (s Session) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}

type (
	// Store persists the session and the last chosen program across restarts.
	Store interface {
		LoadSession() (Session, bool, error)
		SaveSession(s Session) error
		ClearSession() error
		LoadProgram() (hours.ProgramKey, bool, error)
		SaveProgram(key hours.ProgramKey) error
	}

	// LocationSource fetches the enforcement settings.
	LocationSource interface {
		Location(ctx context.Context) (campus.Location, error)
	}

	// Submitter sends a finished session as a self-reported hour entry.
	Submitter interface {
		LogHours(ctx context.Context, sr hours.NewSelfReport) error
	}

	// SubmitterFunc adapts a function to a Submitter.
	SubmitterFunc func(ctx context.Context, sr hours.NewSelfReport) error
)

func (f SubmitterFunc) LogHours(ctx context.Context, sr hours.NewSelfReport) error { return f(ctx, sr) }

type Timer struct {
	store         Store
	locator       geofence.Locator
	locations     LocationSource
	submitter     Submitter
	locateTimeout time.Duration
}

func New(store Store, locator geofence.Locator, locations LocationSource, submitter Submitter, locateTimeout time.Duration) *Timer {
	return &Timer{
		store:         store,
		locator:       locator,
		locations:     locations,
		submitter:     submitter,
		locateTimeout: locateTimeout,
	}
}

// RoundMinutes converts elapsed seconds into billable minutes: rounded up, at least one.
func RoundMinutes(seconds int64) int {
	m := int(math.Ceil(float64(seconds) / 60))
	if m < 1 {
		return 1
	}
	return m
}

// Running returns the persisted session, if any.
func (t *Timer) Running() (Session, bool, error) {
	return t.store.LoadSession()
}

// Program returns the last chosen program, defaulting to the first of hours.Programs.
func (t *Timer) Program() hours.ProgramKey {
	if key, ok, err := t.store.LoadProgram(); err == nil && ok && key.IsValid() {
		return key
	}
	return hours.Programs[0].Key
}

// location falls back to the default campus location when it cannot be fetched.
func (t *Timer) location(ctx context.Context) campus.Location {
	if t.locations == nil {
		return campus.DefaultLocation
	}
	loc, err := t.locations.Location(ctx)
	if err != nil {
		return campus.DefaultLocation
	}
	return loc
}

// Start opens a session for program once the geofence allows it. The start time is taken
// before the position is requested.
func (t *Timer) Start(ctx context.Context, program hours.ProgramKey) (Session, error) {
	if _, running, err := t.store.LoadSession(); err != nil {
		return Session{}, errors.Wrap(err, "loading session")
	} else if running {
		return Session{}, ErrAlreadyRunning
	}
	if !program.IsValid() {
		return Session{}, errors.Errorf("unknown program %q", program)
	}

	startedAt := NowFunc().UTC()
	if err := geofence.Check(ctx, t.locator, t.location(ctx), t.locateTimeout); err != nil {
		return Session{}, err
	}

	s := Session{StartedAt: startedAt, ProgramKey: program}
	if err := t.store.SaveSession(s); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	if err := t.store.SaveProgram(program); err != nil {
		return Session{}, errors.Wrap(err, "saving program")
	}
	return s, nil
}

// Stop checks the geofence, submits the session and clears it. On any failure the session is kept.
func (t *Timer) Stop(ctx context.Context) (hours.NewSelfReport, error) {
	s, running, err := t.store.LoadSession()
	if err != nil {
		return hours.NewSelfReport{}, errors.Wrap(err, "loading session")
	}
	if !running {
		return hours.NewSelfReport{}, ErrNotRunning
	}

	if err := geofence.Check(ctx, t.locator, t.location(ctx), t.locateTimeout); err != nil {
		return hours.NewSelfReport{}, err
	}

	now := NowFunc().UTC()
	elapsed := s.Elapsed(now)
	sr := hours.NewSelfReport{
		Minutes:    RoundMinutes(int64(elapsed / time.Second)),
		ProgramKey: s.ProgramKey,
		StartedAt:  s.StartedAt.Format(time.RFC3339),
		EndedAt:    now.Format(time.RFC3339),
	}
	if err := t.submitter.LogHours(ctx, sr); err != nil {
		return hours.NewSelfReport{}, errors.Wrap(err, "submitting hours")
	}

	if err := t.store.ClearSession(); err != nil {
		return sr, errors.Wrap(err, "clearing session")
	}
	return sr, nil
}

// Watch calls fn with the elapsed time on every tick until ctx is done or the session ends.
// The interval is capped at one second.
func (t *Timer) Watch(ctx context.Context, interval time.Duration, fn func(elapsed time.Duration)) error {
	if interval <= 0 || interval > time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s, running, err := t.store.LoadSession()
		if err != nil {
			return errors.Wrap(err, "loading session")
		}
		if !running {
			return ErrNotRunning
		}
		fn(s.Elapsed(NowFunc()))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
