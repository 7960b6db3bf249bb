package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoToken is returned when the API token is absent. Fetching without a
// credential is fatal for a scheduling run.
var ErrNoToken = errors.New("todoist API token is not set")

// Client talks to the Todoist REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a REST client. token may be empty; every call will then
// fail with ErrNoToken so the caller can surface the configuration absence.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UpdateArgs carries the mutable fields of an update request. Nil fields are
// left untouched by the store.
type UpdateArgs struct {
	DueDatetime *time.Time
	DueString   *string
	Description *string
	Priority    *int
	Labels      []string
}

// ListTasks returns all active (non-completed) tasks.
func (c *Client) ListTasks(ctx context.Context) ([]*Task, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("listing tasks failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tasks []*Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the given changes to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, args UpdateArgs) error {
	if c.token == "" {
		return ErrNoToken
	}

	body := map[string]any{}
	if args.DueDatetime != nil {
		body["due_datetime"] = args.DueDatetime.Format(time.RFC3339)
	}
	if args.DueString != nil {
		body["due_string"] = *args.DueString
	}
	if args.Description != nil {
		body["description"] = *args.Description
	}
	if args.Priority != nil {
		body["priority"] = *args.Priority
	}
	if args.Labels != nil {
		body["labels"] = args.Labels
	}
	if len(body) == 0 {
		return nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks/"+id, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("updating task %s failed (status %d): %s", id, resp.StatusCode, string(b))
	}
	return nil
}

// CloseTask marks a task complete.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	if c.token == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks/"+id+"/close", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("closing task %s: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("closing task %s failed (status %d): %s", id, resp.StatusCode, string(b))
	}
	return nil
}
