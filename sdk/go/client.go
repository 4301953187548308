package outreachsdk

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
)

// Client is a minimal outreach HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// Contact represents the API contact model.
type Contact struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneOffice string `json:"phone_office"`
	PhoneMobile string `json:"phone_mobile"`
	Company     string `json:"company"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	SequenceID  string `json:"sequence_id,omitempty"`
}

// Step is one action of a sequence.
type Step struct {
	ID         string `json:"id"`
	SequenceID string `json:"sequence_id"`
	Order      int    `json:"order"`
	ActionType string `json:"action_type"`
	WaitDays   int    `json:"wait_days"`
	WaitHours  int    `json:"wait_hours"`
	Name       string `json:"name"`
}

type Sequence struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps,omitempty"`
}

// Task is a scheduled email or call.
type Task struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contact_id"`
	SequenceID string    `json:"sequence_id"`
	StepID     string    `json:"step_id"`
	ActionType string    `json:"action_type"`
	Name       string    `json:"name"`
	DueAt      time.Time `json:"due_at"`
	Outcome    string    `json:"outcome"`
	Notes      string    `json:"notes"`
}

// Summary counts the worklist buckets.
type Summary struct {
	Overdue   int `json:"overdue"`
	DueToday  int `json:"due_today"`
	Completed int `json:"completed"`
	Calls     int `json:"calls"`
	Emails    int `json:"emails"`
}

// Today is the daily worklist.
type Today struct {
	Date      string  `json:"date"`
	Overdue   []Task  `json:"overdue"`
	DueToday  []Task  `json:"due_today"`
	Completed []Task  `json:"completed"`
	Summary   Summary `json:"summary"`
}

// Event represents a log entry.
type Event struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	EntityID   string         `json:"entity_id"`
	EntityKind string         `json:"entity_kind"`
	Payload    map[string]any `json:"payload"`
}

// StateSummary counts what an import or reset left in the store.
type StateSummary struct {
	Companies int `json:"companies"`
	Contacts  int `json:"contacts"`
	Sequences int `json:"sequences"`
	Steps     int `json:"steps"`
	Tasks     int `json:"tasks"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// PaginatedEvents wraps list responses with cursors.
type PaginatedEvents struct {
	Items      []Event `json:"items"`
	NextCursor string  `json:"next_cursor"`
}

type list[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) Today(ctx context.Context) (Today, error) {
	var resp Today
	err := c.do(ctx, http.MethodGet, "today", nil, &resp)
	return resp, err
}

func (c *Client) Contacts(ctx context.Context) ([]Contact, error) {
	var resp list[Contact]
	err := c.do(ctx, http.MethodGet, "contacts", nil, &resp)
	return resp.Items, err
}

// CreateContact adds a contact; only non-empty fields are sent.
func (c *Client) CreateContact(ctx context.Context, in Contact) (Contact, error) {
	body := map[string]any{}
	for k, v := range map[string]string{
		"first_name":   in.FirstName,
		"last_name":    in.LastName,
		"email":        in.Email,
		"phone_office": in.PhoneOffice,
		"phone_mobile": in.PhoneMobile,
		"company":      in.Company,
		"status":       in.Status,
		"notes":        in.Notes,
		"sequence_id":  in.SequenceID,
	} {
		if v != "" {
			body[k] = v
		}
	}
	var resp Contact
	err := c.do(ctx, http.MethodPost, "contacts", body, &resp)
	return resp, err
}

// Enroll schedules the contact's sequence. A non-empty sequenceID assigns
// that sequence first.
func (c *Client) Enroll(ctx context.Context, contactID, sequenceID string) ([]Task, error) {
	body := map[string]any{}
	if sequenceID != "" {
		body["sequence_id"] = sequenceID
	}
	var resp list[Task]
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("contacts/%s/enroll", url.PathEscape(contactID)), body, &resp)
	return resp.Items, err
}

func (c *Client) Sequences(ctx context.Context) ([]Sequence, error) {
	var resp list[Sequence]
	err := c.do(ctx, http.MethodGet, "sequences", nil, &resp)
	return resp.Items, err
}

func (c *Client) Sequence(ctx context.Context, id string) (Sequence, error) {
	var resp Sequence
	err := c.do(ctx, http.MethodGet, "sequences/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// Tasks lists tasks, optionally for one contact and only pending ones.
func (c *Client) Tasks(ctx context.Context, contactID string, pendingOnly bool) ([]Task, error) {
	q := url.Values{}
	if contactID != "" {
		q.Set("contact_id", contactID)
	}
	if pendingOnly {
		q.Set("pending", "true")
	}
	endpoint := "tasks"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp list[Task]
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

func (c *Client) CompleteTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("tasks/%s/complete", url.PathEscape(id)), nil, &resp)
	return resp, err
}

// SnoozeTask pushes a task back; hours <= 0 uses the server default.
func (c *Client) SnoozeTask(ctx context.Context, id string, hours int) (Task, error) {
	body := map[string]any{}
	if hours > 0 {
		body["hours"] = hours
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("tasks/%s/snooze", url.PathEscape(id)), body, &resp)
	return resp, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "tasks/"+url.PathEscape(id), nil, nil)
}

// Export downloads a backup in the given format ("json" or "yaml").
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	var raw bytes.Buffer
	err := c.do(ctx, http.MethodGet, "export?format="+url.QueryEscape(format), nil, &raw)
	return raw.Bytes(), err
}

// Import replaces the server state with a backup.
func (c *Client) Import(ctx context.Context, data []byte, format string) (StateSummary, error) {
	var resp StateSummary
	err := c.do(ctx, http.MethodPost, "import?format="+url.QueryEscape(format), rawBody(data), &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	page, err := c.EventsPage(ctx, limit, "")
	return page.Items, err
}

// EventsPage returns a paginated event listing.
func (c *Client) EventsPage(ctx context.Context, limit int, cursor string) (PaginatedEvents, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint := "events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp PaginatedEvents
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// rawBody is sent as-is instead of JSON encoded.
type rawBody []byte

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case rawBody:
		buf.Write(b)
		contentType = "application/octet-stream"
	default:
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}
	switch o := out.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		_, err := io.Copy(o, resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
