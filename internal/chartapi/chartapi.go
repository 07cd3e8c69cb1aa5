// Package chartapi is the HTTP layer for fetching chart data resources.
package chartapi

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Backend is the server hosting a page's data resources.
//
// There is generally exactly one Backend per page and a small number of
// Clients, created per chart when different retry policies are needed.
type Backend struct {
	// The URL prefix resolved against for relative resource paths.
	baseURL *url.URL
}

// Client fetches resources from a Backend with retries.
type Client struct {
	backend       *Backend
	retryableHTTP *retryablehttp.Client
}

// New creates a Backend. The baseURL is the scheme and hostname of the
// server, for example "http://localhost:8080".
func New(baseURL *url.URL) *Backend {
	return &Backend{baseURL}
}

// NewClient creates a Client for making requests to the Backend.
func (backend *Backend) NewClient(retryableHTTP *retryablehttp.Client) *Client {
	return &Client{
		backend:       backend,
		retryableHTTP: retryableHTTP,
	}
}

// NewRetryClient returns a retryable HTTP client with the engine's default
// policy. Failed sources degrade to placeholder datasets, so the retry
// budget is kept short rather than hanging a chart's completion barrier.
func NewRetryClient() *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	return rc
}

// Resolve expands a resource reference against the backend's base URL.
// Absolute URLs pass through untouched.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("chartapi: bad resource %q: %w", ref, err)
	}
	if u.IsAbs() || c.backend.baseURL == nil {
		return u.String(), nil
	}
	return c.backend.baseURL.ResolveReference(u).String(), nil
}

// Get fetches a resource and returns its body. The optional query values
// are appended to the resolved URL.
func (c *Client) Get(ref string, query url.Values) ([]byte, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("chartapi: bad resource %q: %w", target, err)
		}
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	req, err := retryablehttp.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("chartapi: %w", err)
	}

	resp, err := c.retryableHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chartapi: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chartapi: %s returned %s", target, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chartapi: reading %s: %w", target, err)
	}
	return body, nil
}
