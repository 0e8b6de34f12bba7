package store

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/timer"
)

func TestFileStore_session(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, running, err := s.LoadSession()
	require.NoError(t, err)
	assert.False(t, running)

	sess := timer.Session{StartedAt: time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC), ProgramKey: hours.ProgramNailTech}
	require.NoError(t, s.SaveSession(sess))

	// a new store over the same directory sees the session, as after a restart
	reopened := &FileStore{path: s.Path()}
	got, running, err := reopened.LoadSession()
	require.NoError(t, err)
	assert.True(t, running)
	assert.True(t, sess.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, sess.ProgramKey, got.ProgramKey)

	require.NoError(t, reopened.ClearSession())
	_, running, err = s.LoadSession()
	require.NoError(t, err)
	assert.False(t, running)

	// clearing twice is fine
	assert.NoError(t, s.ClearSession())
}

func TestFileStore_programSurvivesClear(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, ok, err := s.LoadProgram()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveProgram(hours.ProgramCosmetology))
	require.NoError(t, s.SaveSession(timer.Session{StartedAt: time.Now().UTC(), ProgramKey: hours.ProgramCosmetology}))
	require.NoError(t, s.ClearSession())

	key, ok, err := s.LoadProgram()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hours.ProgramCosmetology, key)
}

func TestFileStore_corruptFile(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, _, err := s.LoadSession()
	assert.Error(t, err)
	assert.Error(t, s.SaveSession(timer.Session{}))
}
