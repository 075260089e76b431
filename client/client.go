// Package client is a typed client for the classifier API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	api "newsclf/http"
	"newsclf/inference"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("classifier api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("classifier api error (%d): %s", e.StatusCode, e.Detail)
}

// Client talks to one classifier server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a client for baseURL. A non-positive timeout means 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Root calls the liveness endpoint.
func (c *Client) Root(ctx context.Context) (*api.RootResponse, error) {
	var out api.RootResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports which artifacts the server has loaded.
func (c *Client) Health(ctx context.Context) (*inference.HealthStatus, error) {
	var out inference.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Predict classifies text on the server.
func (c *Client) Predict(ctx context.Context, text string) (*inference.Prediction, error) {
	var out inference.Prediction
	if err := c.do(ctx, http.MethodPost, "/predict", api.PredictRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reload asks the server to reread its artifacts from disk.
func (c *Client) Reload(ctx context.Context) (*api.ReloadResponse, error) {
	var out api.ReloadResponse
	if err := c.do(ctx, http.MethodPost, "/reload-models", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb api.ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Detail = eb.Detail
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
