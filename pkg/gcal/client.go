package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
)

const (
	defaultBaseURL          = "https://www.googleapis.com/calendar/v3"
	defaultCalendarID       = "primary"
	responseBodyLimit int64 = 1024
)

var errTokenRequired = errors.New("calendar access token is required")

// Client wraps the Google Calendar events API used by the synchronizer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	calendarID string
	timeZone   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Calendar base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithCalendarID overrides the target calendar.
func WithCalendarID(calendarID string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(calendarID)
		if trimmed != "" {
			c.calendarID = trimmed
		}
	}
}

// WithTimeZone sets the IANA time zone stamped on event payloads.
func WithTimeZone(tz string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(tz)
		if trimmed != "" {
			c.timeZone = trimmed
		}
	}
}

// NewClient builds the Calendar client given an OAuth bearer token.
func NewClient(token string, opts ...Option) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if trimmedToken == "" {
		return nil, errTokenRequired
	}

	client := &Client{
		token:      trimmedToken,
		baseURL:    defaultBaseURL,
		calendarID: defaultCalendarID,
		timeZone:   "UTC",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Event describes the data pushed to the provider.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// EventResult holds the provider identifiers for a synced event.
type EventResult struct {
	ID      string
	Status  string
	Updated time.Time
}

type eventPayload struct {
	Summary     string       `json:"summary"`
	Description string       `json:"description,omitempty"`
	Start       eventInstant `json:"start"`
	End         eventInstant `json:"end"`
}

type eventInstant struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// CreateEvent pushes a new event and returns the provider identifiers.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (*EventResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "calendar client not configured")
	}
	if strings.TrimSpace(ev.Summary) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event summary is required")
	}

	endpoint := c.buildURL(fmt.Sprintf("calendars/%s/events", url.PathEscape(c.calendarID)))
	return c.send(ctx, http.MethodPost, endpoint, ev, "create event")
}

// UpdateEvent replaces the remote event with the provided data.
func (c *Client) UpdateEvent(ctx context.Context, externalEventID string, ev Event) (*EventResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "calendar client not configured")
	}
	trimmed := strings.TrimSpace(externalEventID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external event ID is required")
	}

	endpoint := c.buildURL(fmt.Sprintf("calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(trimmed)))
	return c.send(ctx, http.MethodPut, endpoint, ev, "update event")
}

func (c *Client) send(ctx context.Context, method, endpoint string, ev Event, action string) (*EventResult, error) {
	payload, err := json.Marshal(c.payloadFor(ev))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal "+action+" request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+action+" request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+action+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), action+" request failed")
	}

	var apiResp struct {
		ID      string    `json:"id"`
		Status  string    `json:"status"`
		Updated time.Time `json:"updated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+action+" response")
	}

	return &EventResult{
		ID:      apiResp.ID,
		Status:  apiResp.Status,
		Updated: apiResp.Updated,
	}, nil
}

func (c *Client) payloadFor(ev Event) eventPayload {
	return eventPayload{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: eventInstant{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: c.timeZone,
		},
		End: eventInstant{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: c.timeZone,
		},
	}
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
