// Package googletasks mirrors local todos into Google Tasks.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"gtodo/internal/config"
	"gtodo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	// markerPrefix starts the notes line that links a remote task to a local todo.
	markerPrefix = "gtodo:"
)

var (
	// ErrAuth is returned when the stored token is expired or revoked.
	ErrAuth = errors.New("token expired or revoked (run: gtodo login)")

	// ErrTimeout is returned when an API call exceeds APITimeout.
	ErrTimeout = errors.New("request timed out")
)

// Client exports todos to the user's default Google Tasks list.
type Client struct {
	svc    *tasks.Service
	listID string
	now    func() time.Time
}

var _ service.Exporter = (*Client)(nil)

// New creates a client from oauth_client.json and token.json in cfg.Dir.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// Token source refreshes automatically
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// Extra options (e.g. option.WithEndpoint) are passed to the Tasks service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listID: DefaultListID, now: time.Now}, nil
}

// Export creates or updates the remote copy of todo. The remote task is
// found through the marker line in its notes.
func (c *Client) Export(ctx context.Context, todo service.Todo, reminders []service.Reminder) error {
	existing, err := c.findTask(ctx, todo.ID)
	if err != nil {
		return err
	}

	task := c.taskFor(todo, reminders)

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if existing == nil {
		_, err = c.svc.Tasks.Insert(c.listID, task).Context(ctx).Do()
	} else {
		_, err = c.svc.Tasks.Patch(c.listID, existing.Id, task).Context(ctx).Do()
	}
	return wrapError(err)
}

// findTask returns the remote task mirroring todoID, or nil.
func (c *Client) findTask(ctx context.Context, todoID int64) (*tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	marker := Marker(todoID)
	var found *tasks.Task
	errStop := errors.New("stop")

	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				if hasMarker(t.Notes, marker) {
					found = t
					return errStop
				}
			}
			return nil
		})
	if err != nil && !errors.Is(err, errStop) {
		return nil, wrapError(err)
	}
	return found, nil
}

func (c *Client) taskFor(todo service.Todo, reminders []service.Reminder) *tasks.Task {
	notes := Marker(todo.ID)
	if todo.Description != "" {
		notes = todo.Description + "\n\n" + notes
	}

	task := &tasks.Task{
		Title:  todo.Title,
		Notes:  notes,
		Status: "needsAction",
	}
	if todo.IsDone {
		task.Status = "completed"
	} else {
		// Patch must clear a previous completion time
		task.NullFields = []string{"Completed"}
	}
	if due, ok := NextDue(reminders, c.now()); ok {
		task.Due = due.Format(time.RFC3339)
	}
	return task
}

// Marker returns the notes line linking a remote task to todo id.
func Marker(id int64) string {
	return markerPrefix + strconv.FormatInt(id, 10)
}

func hasMarker(notes, marker string) bool {
	for _, line := range strings.Split(notes, "\n") {
		if strings.TrimSpace(line) == marker {
			return true
		}
	}
	return false
}

// NextDue returns the date of the earliest reminder not before now, as
// UTC midnight. Google Tasks discards the time of day of a due date.
func NextDue(reminders []service.Reminder, now time.Time) (time.Time, bool) {
	var next *service.Reminder
	for i := range reminders {
		r := &reminders[i]
		if r.IsInThePast(now) {
			continue
		}
		if next == nil || r.At.Before(next.At) {
			next = r
		}
	}
	if next == nil {
		return time.Time{}, false
	}
	y, m, d := next.At.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// wrapError maps API errors to user-facing errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}

	// oauth2 refresh failures are not googleapi errors
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return ErrAuth
	}

	return err
}
