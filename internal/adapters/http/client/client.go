// Package client talks to the calendar API over HTTP. It is the remote side
// used by the reconciling client view and the command line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/customevents"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

const customEventsPath = "/api/custom-events"

// Client is an HTTP client for the calendar API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// New returns a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("api-client")
	}
	return c
}

// envelope is the superset of every response body the API writes.
type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Code    string             `json:"code"`
	Event   json.RawMessage    `json:"event"`
	Events  json.RawMessage    `json:"events"`
	Matches []model.MatchEvent `json:"matches"`
}

// List returns the stored custom events.
func (c *Client) List(ctx context.Context) ([]model.CustomEvent, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, customEventsPath, nil, &env); err != nil {
		return nil, err
	}
	var events []model.CustomEvent
	if err := decodeField(env.Events, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Create stores ev and returns the server's copy.
func (c *Client) Create(ctx context.Context, ev model.CustomEvent) (model.CustomEvent, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, customEventsPath, ev, &env); err != nil {
		return model.CustomEvent{}, err
	}
	var out model.CustomEvent
	err := decodeField(env.Event, &out)
	return out, err
}

// Update applies patch to the event with the given id.
func (c *Client) Update(ctx context.Context, id string, patch model.EventPatch) (model.CustomEvent, error) {
	body := struct {
		ID string `json:"id"`
		model.EventPatch
	}{ID: id, EventPatch: patch}

	var env envelope
	if err := c.do(ctx, http.MethodPatch, customEventsPath, body, &env); err != nil {
		return model.CustomEvent{}, err
	}
	var out model.CustomEvent
	err := decodeField(env.Event, &out)
	return out, err
}

// Delete removes the event with the given id. Unknown ids succeed.
func (c *Client) Delete(ctx context.Context, id string) error {
	body := struct {
		ID string `json:"id"`
	}{ID: id}
	return c.do(ctx, http.MethodDelete, customEventsPath, body, &envelope{})
}

// RefreshFixtures asks the server to refetch football fixtures.
func (c *Client) RefreshFixtures(ctx context.Context) ([]model.MatchEvent, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/barcelona-matches", nil, &env); err != nil {
		return nil, err
	}
	return env.Matches, nil
}

// RefreshSchedule asks the server to refetch the e-sports schedule.
func (c *Client) RefreshSchedule(ctx context.Context) ([]model.MatchEvent, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/league-matches", nil, &env); err != nil {
		return nil, err
	}
	var events []model.MatchEvent
	err := decodeField(env.Events, &events)
	return events, err
}

// Health checks that the service answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health: %w", ErrRequest, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health: status %d", ErrResponse, resp.StatusCode)
	}
	return nil
}

// Calendar reads the aggregated view narrowed by q.
func (c *Client) Calendar(ctx context.Context, q aggregate.Query) ([]model.DisplayEvent, error) {
	values := url.Values{}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.HasWindow() {
		values.Set("from", q.From.Format(time.RFC3339))
		values.Set("to", q.To.Format(time.RFC3339))
	}
	path := "/api/calendar"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	var events []model.DisplayEvent
	err := decodeField(env.Events, &events)
	return events, err
}

func (c *Client) do(ctx context.Context, method, path string, in any, out *envelope) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode body: %w", ErrRequest, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: status %d: %w", ErrResponse, method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !out.Success {
		c.logger.Debug(ctx, "request rejected",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("code", out.Code))
		return rejection(resp.StatusCode, out)
	}
	return nil
}

// rejection maps a failure envelope to an error the domain can match.
func rejection(status int, env *envelope) error {
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch env.Code {
	case "not_found":
		return fmt.Errorf("%w: %s", customevents.ErrNotFound, msg)
	case "invalid_event":
		return fmt.Errorf("%w: %s", customevents.ErrInvalidEvent, msg)
	case "duplicate_id":
		return fmt.Errorf("%w: %s", customevents.ErrDuplicateID, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrResponse, status, msg)
	}
}

func decodeField(raw json.RawMessage, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrResponse, err)
	}
	return nil
}
