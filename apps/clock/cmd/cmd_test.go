package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/apps/clock/config"
	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/timer"
)

type fakeAPI struct {
	mu       sync.Mutex
	location campus.Location
	failLogs bool
	logged   []hours.NewSelfReport
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "missing or malformed jwt"}`))
		return
	}
	switch r.URL.Path {
	case "/api/campus-location":
		_ = json.NewEncoder(w).Encode(f.location)
	case "/api/hours/log":
		if f.failLogs {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "Internal Server Error"}`))
			return
		}
		var sr hours.NewSelfReport
		_ = json.NewDecoder(r.Body).Decode(&sr)
		f.logged = append(f.logged, sr)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type harness struct {
	api    *fakeAPI
	srv    *httptest.Server
	dir    string
	stdout *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	loc := campus.DefaultLocation
	loc.IsEnabled = true
	h := &harness{
		api:    &fakeAPI{location: loc},
		dir:    t.TempDir(),
		stdout: new(bytes.Buffer),
	}
	h.srv = httptest.NewServer(h.api)
	t.Cleanup(h.srv.Close)

	require.NoError(t, config.Save(filepath.Join(h.dir, config.ConfigFile), config.Config{
		APIURL:        h.srv.URL,
		Token:         "tok",
		LocateTimeout: time.Second,
	}))
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.stdout.Reset()
	root := NewRootCmd(&Deps{
		Stdout:     h.stdout,
		Stderr:     new(bytes.Buffer),
		ConfigDir:  func() (string, error) { return h.dir, nil },
		HTTPClient: h.srv.Client(),
	})
	root.SetArgs(args)
	err := root.Execute()
	return h.stdout.String(), err
}

func setNow(t *testing.T, now time.Time) {
	orig := timer.NowFunc
	timer.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { timer.NowFunc = orig })
}

// ~50m north of the default campus center
var onCampus = []string{"--lat", "41.736708", "--lng", "-111.857516"}

func TestClock_startStop(t *testing.T) {
	h := newHarness(t)
	t0 := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not clocked in")

	_, err = h.run("start", "--program", "nail_tech")
	require.Error(t, err)
	assert.Equal(t, "Geolocation is required to clock in.", err.Error())

	_, err = h.run("start", "--program", "NAIL_TECH", "--lat", "41.74")
	assert.EqualError(t, err, "--lat and --lng must be given together")

	_, err = h.run(append([]string{"start", "--program", "NAIL_TECH", "--lat", "40.0"}, "--lng", "-111.857516")...)
	require.Error(t, err)
	assert.Equal(t, "Clock-in only allowed within 150m of Campus.", err.Error())

	setNow(t, t0)
	out, err = h.run(append([]string{"start", "--program", "nail_tech"}, onCampus...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked in for Nail Technology")

	_, err = h.run(append([]string{"start"}, onCampus...)...)
	assert.EqualError(t, err, timer.ErrAlreadyRunning.Error())

	setNow(t, t0.Add(130*time.Second))
	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked in for Nail Technology")
	assert.Contains(t, out, "Elapsed: 00:02:10")

	// a failed submission keeps the session
	h.api.set(func(f *fakeAPI) { f.failLogs = true })
	_, err = h.run(append([]string{"stop"}, onCampus...)...)
	require.Error(t, err)
	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked in for")

	h.api.set(func(f *fakeAPI) { f.failLogs = false })
	out, err = h.run(append([]string{"stop"}, onCampus...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 3 minutes of Nail Technology")

	var logged []hours.NewSelfReport
	h.api.set(func(f *fakeAPI) { logged = f.logged })
	require.Len(t, logged, 1)
	assert.Equal(t, hours.NewSelfReport{
		Minutes:    3,
		ProgramKey: hours.ProgramNailTech,
		StartedAt:  "2024-03-01T17:00:00Z",
		EndedAt:    "2024-03-01T17:02:10Z",
	}, logged[0])

	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not clocked in. Last program: NAIL_TECH.")

	_, err = h.run(append([]string{"stop"}, onCampus...)...)
	assert.EqualError(t, err, timer.ErrNotRunning.Error())
}

func TestClock_disabledEnforcementNeedsNoPosition(t *testing.T) {
	h := newHarness(t)
	h.api.set(func(f *fakeAPI) { f.location = campus.DefaultLocation })

	out, err := h.run("start", "--program", "COSMETOLOGY")
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked in for Cosmetology")

	out, err = h.run("stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 1 minutes of Cosmetology")
}

func TestClock_location(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("location")
	require.NoError(t, err)
	assert.Contains(t, out, "Campus")
	assert.Contains(t, out, "Radius: 150m")
	assert.Contains(t, out, "Enforcement: enabled")

	_, err = h.run("location", "--token", "other")
	assert.EqualError(t, err, "fetching campus location: api error 401: missing or malformed jwt")
}

func TestClock_configure(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, config.ConfigFile)

	_, err := h.run("configure", "--program", "barbering")
	assert.EqualError(t, err, `unknown program "BARBERING"`)

	_, err = h.run("configure", "--program", "nail_tech", "--token", "new-token", "--locate-timeout", "4s")
	require.NoError(t, err)

	conf, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "NAIL_TECH", conf.Program)
	assert.Equal(t, "new-token", conf.Token)
	assert.Equal(t, h.srv.URL, conf.APIURL)
	assert.Equal(t, 4*time.Second, conf.LocateTimeout)
}
