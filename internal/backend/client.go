// Package backend is the HTTP client of the automation service that drives
// the timesheet portal.
package backend

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

	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultHealthTimeout = 5 * time.Second

	maxErrorBody = 64 << 10
)

// Routes are the paths of each backend operation, relative to the base URL.
type Routes struct {
	SaveCredentials  string
	LoadCredentials  string
	LoadTasks        string
	Execute          string
	AutomationStatus string
	Health           string
}

// DefaultRoutes returns the routes of the automation service contract.
func DefaultRoutes() Routes {
	return Routes{
		SaveCredentials:  "/credentials",
		LoadCredentials:  "/credentials",
		LoadTasks:        "/tasks",
		Execute:          "/automation",
		AutomationStatus: "/automation/status",
		Health:           "/health",
	}
}

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
	Routes        Routes
	HTTPClient    *http.Client
	Logger        zerolog.Logger
}

// Client calls the automation backend. It never retries.
type Client struct {
	base          *url.URL
	baseURL       string
	timeout       time.Duration
	healthTimeout time.Duration
	routes        Routes
	http          *http.Client
	logger        zerolog.Logger
}

// New creates a Client for the given base URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", opts.BaseURL)
	}

	c := &Client{
		base:          base,
		baseURL:       base.String(),
		timeout:       opts.Timeout,
		healthTimeout: opts.HealthTimeout,
		routes:        mergeRoutes(opts.Routes, DefaultRoutes()),
		http:          opts.HTTPClient,
		logger:        opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = DefaultHealthTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SaveCredentials stores portal credentials on the backend.
func (c *Client) SaveCredentials(ctx context.Context, creds Credentials) (SaveResult, error) {
	var out SaveResult
	err := c.do(ctx, c.timeout, http.MethodPost, c.routes.SaveCredentials, creds, &out)
	return out, err
}

// LoadCredentials reports whether credentials are stored and for which email.
func (c *Client) LoadCredentials(ctx context.Context) (CredentialStatus, error) {
	var out CredentialStatus
	err := c.do(ctx, c.timeout, http.MethodGet, c.routes.LoadCredentials, nil, &out)
	return out, err
}

// LoadTasks fetches the task table for month/year. Range checks are left to
// the backend.
func (c *Client) LoadTasks(ctx context.Context, month, year int) (TaskList, error) {
	var out TaskList
	err := c.do(ctx, c.timeout, http.MethodPost, c.routes.LoadTasks, loadTasksRequest{Month: month, Year: year}, &out)
	return out, err
}

// Execute submits a request for filling.
func (c *Client) Execute(ctx context.Context, req request.Request) (ExecutionResult, error) {
	var out ExecutionResult
	err := c.do(ctx, c.timeout, http.MethodPost, c.routes.Execute, req, &out)
	return out, err
}

// Status returns the browser automation state.
func (c *Client) Status(ctx context.Context) (AutomationStatus, error) {
	var out AutomationStatus
	err := c.do(ctx, c.healthTimeout, http.MethodGet, c.routes.AutomationStatus, nil, &out)
	return out, err
}

// Health probes liveness with the short health timeout.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, c.healthTimeout, http.MethodGet, c.routes.Health, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, route string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.base.JoinPath(route).String()
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Ctx(ctx).Err(err).Str("method", method).Str("url", target).Msg("backend request failed")
		return &NetworkError{BaseURL: c.baseURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().Ctx(ctx).
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return &NetworkError{BaseURL: c.baseURL, Err: err}
		}
		return &ApplicationError{Status: resp.StatusCode, Detail: detail(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &NetworkError{BaseURL: c.baseURL, Err: err}
		}
		return &ApplicationError{Status: resp.StatusCode, Detail: "invalid response: " + err.Error()}
	}
	return nil
}

// detail extracts the message of an error body. FastAPI style
// {"detail": "..."} and validation lists {"detail": [{"msg": "..."}]} are
// understood; anything else is returned as trimmed text.
func detail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		return string(body.Detail)
	}
	return strings.TrimSpace(string(raw))
}

func mergeRoutes(r, def Routes) Routes {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	return Routes{
		SaveCredentials:  pick(r.SaveCredentials, def.SaveCredentials),
		LoadCredentials:  pick(r.LoadCredentials, def.LoadCredentials),
		LoadTasks:        pick(r.LoadTasks, def.LoadTasks),
		Execute:          pick(r.Execute, def.Execute),
		AutomationStatus: pick(r.AutomationStatus, def.AutomationStatus),
		Health:           pick(r.Health, def.Health),
	}
}
