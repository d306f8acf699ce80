// Package adminclient is a Go client for the admin HTTP control surface
// (spec.md §6): login, reload_config, list processes, inspect per-worker
// stats, and health. Adapted from the teacher's pkg/httpclient, trimmed
// to the admin-only endpoints adminapi exposes.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client is a Go client for one Filter Supervisor's admin surface.
type Client struct {
	config     Config
	httpClient *http.Client
	token      string
	baseURL    *url.URL
}

// NewClient creates an adminclient.Client from config.
func NewClient(config Config) (*Client, error) {
	config.SetDefaults()

	if config.ServerURL == "" {
		return nil, fmt.Errorf("adminclient: ServerURL is required")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("adminclient: ClientID is required")
	}

	baseURL, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("adminclient: invalid ServerURL: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    baseURL,
	}, nil
}

// Login authenticates with the admin surface and stores the returned
// token for subsequent calls.
func (c *Client) Login(ctx context.Context) error {
	req := map[string]string{"clientId": c.config.ClientID}

	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/admin/login", req, &resp, false); err != nil {
		return fmt.Errorf("adminclient: login failed: %w", err)
	}

	c.token = resp.Token
	return nil
}

// Reload triggers the Supervisor's reload_config operation.
func (c *Client) Reload(ctx context.Context) (*ReloadResponse, error) {
	var resp ReloadResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/admin/reload", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("adminclient: reload failed: %w", err)
	}
	return &resp, nil
}

// Processes lists the known Supervisor processes.
func (c *Client) Processes(ctx context.Context) (*ProcessesResponse, error) {
	var resp ProcessesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/processes", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("adminclient: listing processes failed: %w", err)
	}
	return &resp, nil
}

// Workers lists every currently live Filter Worker with its stats.
func (c *Client) Workers(ctx context.Context) (*WorkersResponse, error) {
	var resp WorkersResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/workers", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("adminclient: listing workers failed: %w", err)
	}
	return &resp, nil
}

// Health reports the Supervisor's health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/health", nil, &resp, false); err != nil {
		return nil, fmt.Errorf("adminclient: health check failed: %w", err)
	}
	return &resp, nil
}

// IsAuthenticated reports whether Login has successfully completed.
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// SetToken sets the authentication token directly, bypassing Login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetToken returns the current authentication token.
func (c *Client) GetToken() string {
	return c.token
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody interface{}, requireAuth bool) error {
	fullURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(bodyBytes))
		}
		return fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, resp.Status, errResp.Error)
	}

	if respBody != nil {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}
