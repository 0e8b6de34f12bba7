package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/hours"
)

func TestClient_Location(t *testing.T) {
	loc := campus.DefaultLocation
	loc.IsEnabled = true

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/campus-location", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(loc)
	}))
	defer srv.Close()

	got, err := New(srv.URL+"/", "tok", srv.Client()).Location(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loc.ID, got.ID)
	assert.True(t, got.IsEnabled)
	assert.Equal(t, loc.RadiusMeters, got.RadiusMeters)
}

func TestClient_LogHours(t *testing.T) {
	var got hours.NewSelfReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/hours/log", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "e1"}`))
	}))
	defer srv.Close()

	sr := hours.NewSelfReport{Minutes: 3, ProgramKey: hours.ProgramNailTech, StartedAt: "2024-03-01T17:00:00Z", EndedAt: "2024-03-01T17:02:10Z"}
	require.NoError(t, New(srv.URL, "tok", srv.Client()).LogHours(context.Background(), sr))
	assert.Equal(t, sr.Minutes, got.Minutes)
	assert.Equal(t, sr.ProgramKey, got.ProgramKey)
	assert.Equal(t, sr.StartedAt, got.StartedAt)
	assert.Equal(t, sr.EndedAt, got.EndedAt)
}

func TestClient_errors(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantMsg string
	}{
		{name: "error message", code: http.StatusUnauthorized, body: `{"error": "missing or malformed jwt"}`, wantMsg: "missing or malformed jwt"},
		{name: "field errors", code: http.StatusBadRequest, body: `{"program_key": "unknown program", "minutes": "too small"}`, wantMsg: "minutes: too small; program_key: unknown program"},
		{name: "no body", code: http.StatusBadGateway, body: ``, wantMsg: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "", srv.Client()).Progress(context.Background())
			require.Error(t, err)
			apiErr, ok := errors.Cause(err).(*APIError)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}
