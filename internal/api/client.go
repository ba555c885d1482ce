// Package api is the HTTP client for the ProjectHub REST API: authentication,
// profile statistics, projects and tasks.
package api

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

	"golang.org/x/time/rate"

	"github.com/gerunddev/projecthub/internal/log"
)

// TokenSource returns the current session token, or "" when signed out.
type TokenSource func() string

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Token             TokenSource
}

// Client talks to the ProjectHub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	token      TokenSource
}

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	ErrorCode string          `json:"errorCode"`
}

// NewClient creates a new API client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	token := opts.Token
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 4),
		token:   token,
	}
}

// SetTokenSource replaces the token source used for authenticated requests.
func (c *Client) SetTokenSource(token TokenSource) {
	c.token = token
}

// BaseURL returns the server the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// Auth
// =============================================================================

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me validates token and returns the user it belongs to.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// GetProfile returns the current viewer's profile and statistics.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", c.token(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// Projects
// =============================================================================

// ListProjects returns every project the viewer belongs to.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects", c.token(), nil, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	return out.Projects, nil
}

// GetProject returns one project, including the viewer's role in it.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out struct {
		Project *Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodGet, projectPath(id), c.token(), nil, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, fmt.Errorf("project %s: empty response", id)
	}
	return out.Project, nil
}

// CreateProject creates a project owned by the viewer.
func (c *Client) CreateProject(ctx context.Context, fields ProjectFields) (*Project, error) {
	var out struct {
		Project Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPost, "/projects", c.token(), fields, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// UpdateProject replaces a project's writable fields.
func (c *Client) UpdateProject(ctx context.Context, id string, fields ProjectFields) (*Project, error) {
	var out struct {
		Project Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPut, projectPath(id), c.token(), fields, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, projectPath(id), c.token(), nil, nil)
}

// =============================================================================
// Tasks
// =============================================================================

// ListTasks returns the tasks of a project.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, tasksPath(projectID), c.token(), nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []Task{}
	}
	return out.Tasks, nil
}

// CreateTask creates a task inside a project.
func (c *Client) CreateTask(ctx context.Context, projectID string, fields TaskFields) (*Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, tasksPath(projectID), c.token(), fields, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// UpdateTask replaces a task's writable fields.
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, fields TaskFields) (*Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, taskPath(projectID, taskID), c.token(), fields, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return c.do(ctx, http.MethodDelete, taskPath(projectID, taskID), c.token(), nil, nil)
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

func tasksPath(projectID string) string {
	return projectPath(projectID) + "/tasks"
}

func taskPath(projectID, taskID string) string {
	return tasksPath(projectID) + "/" + url.PathEscape(taskID)
}

// do sends one request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		log.CloseError("response body", resp.Body.Close())
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.ErrorCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}
