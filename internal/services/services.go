package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskr/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL   = "http://127.0.0.1:4000/api"
	defaultUserAgent = "taskr"
)

// Client issues JSON requests to the task service relative to a single base URL.
//
// Outgoing requests carry the bearer credential from the configured [oauth2.TokenSource] when it yields one.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client       // Base client; its Transport is wrapped, never mutated
	Tokens     oauth2.TokenSource // Current bearer credential; nil sends every request unauthenticated
	UserAgent  string
	Timeout    time.Duration // Applied only when HTTPClient is nil
	Logger     *log.Logger
}

// NewClient creates a new [Client] for the task service.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: opts.Timeout}
	}

	wrapped := *base
	wrapped.Transport = &bearerTransport{
		base:      base.Transport,
		source:    opts.Tokens,
		userAgent: opts.UserAgent,
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &wrapped,
		logger:     opts.Logger,
	}
}

// BaseURL returns the service root all paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a raw service response with status and body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do sends a request with an optional JSON body and returns the raw response.
//
// Non-2xx statuses are returned as an [*APIError]; network failures wrap [shared.ErrTransport].
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrTransport, err)
	}

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}

// doJSON sends a request and decodes a JSON response body into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}
