// Package syncclient is the HTTP client for the dmscreen-sync document
// service. Client satisfies sync.RemoteStore.
package syncclient

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

	"github.com/marcus/dmscreen/internal/models"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// DefaultTimeout is the HTTP client timeout
const DefaultTimeout = 30 * time.Second

// Client talks to a dmscreen-sync server
type Client struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	HTTP     *http.Client
}

// New creates a new sync client.
func New(baseURL, apiKey, deviceID string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: DefaultTimeout},
	}
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// MeResponse is the response from GET /v1/me.
type MeResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// PutResponse is the response from PUT /v1/users/{id}/state.
type PutResponse struct {
	LastSync time.Time `json:"lastSync"`
}

// HealthCheck hits the /healthz endpoint to verify server reachability.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/healthz", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the API key belongs to
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches the user's document. A missing document is nil, nil.
func (c *Client) Get(ctx context.Context, userID string) (*models.SyncRecord, error) {
	var rec models.SyncRecord
	err := c.do(ctx, http.MethodGet, statePath(userID), nil, &rec)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Normalize()
	return &rec, nil
}

// Set overwrites the user's document and returns the server's timestamp
func (c *Client) Set(ctx context.Context, userID string, state models.GameState) (time.Time, error) {
	var resp PutResponse
	if err := c.do(ctx, http.MethodPut, statePath(userID), state, &resp); err != nil {
		return time.Time{}, err
	}
	if resp.LastSync.IsZero() {
		return time.Time{}, fmt.Errorf("server response missing lastSync")
	}
	return resp.LastSync, nil
}

func statePath(userID string) string {
	return "/v1/users/" + url.PathEscape(userID) + "/state"
}

// --- HTTP helpers ---

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// do executes an authenticated HTTP request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, true)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, auth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var env errorEnvelope
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &env) == nil && env.Error.Code != "" {
			msg = env.Error.Message
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, msg)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		if env.Error.Code != "" {
			return &env.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
