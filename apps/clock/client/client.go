// Package client talks to the academy API on behalf of the clock CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/timer"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer of the API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Progress is one program's progress as served by the API.
type Progress struct {
	hours.ProgramProgress
	RemainingMinutes int `json:"remaining_minutes"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var (
	_ timer.LocationSource = (*Client)(nil)
	_ timer.Submitter      = (*Client)(nil)
)

// New returns a client of the API at baseURL authenticating with token. httpClient may be nil.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// Location fetches the campus location settings.
func (c *Client) Location(ctx context.Context) (campus.Location, error) {
	var loc campus.Location
	err := c.do(ctx, http.MethodGet, "/api/campus-location", nil, &loc)
	return loc, errors.Wrap(err, "fetching campus location")
}

// LogHours submits a finished session for review.
func (c *Client) LogHours(ctx context.Context, sr hours.NewSelfReport) error {
	return errors.Wrap(c.do(ctx, http.MethodPost, "/api/hours/log", sr, nil), "logging hours")
}

// Progress fetches the signed-in student's progress per program.
func (c *Client) Progress(ctx context.Context) ([]Progress, error) {
	var res []Progress
	err := c.do(ctx, http.MethodGet, "/api/hours/progress", nil, &res)
	return res, errors.Wrap(err, "fetching progress")
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Code: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decoding response")
}

// errorMessage reads {"error": msg} and field error maps; anything else falls back to the status text.
func errorMessage(code int, data []byte) string {
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil || len(body) == 0 {
		return http.StatusText(code)
	}
	if msg, ok := body["error"].(string); ok {
		return msg
	}

	fields := make([]string, 0, len(body))
	for fld, msg := range body {
		fields = append(fields, fmt.Sprintf("%s: %v", fld, msg))
	}
	sort.Strings(fields)
	return strings.Join(fields, "; ")
}
