// Package foremansdk is a typed client for the agent-facing part of the
// foreman HTTP API: actions, execution tasks, reviews, gates, supervisor
// snapshots and the orchestration timeline.
package foremansdk

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

	"github.com/cenkalti/backoff/v4"
)

const defaultRetryMaxElapsed = 30 * time.Second

// Client talks to a foreman server. BaseURL includes the API base path,
// for example http://127.0.0.1:8080/v1.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// NewBackOff returns the retry policy for one call. BackOff values are
	// stateful, so it must return a fresh instance each time.
	NewBackOff func() backoff.BackOff
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, Timeout: 10 * time.Second}
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
		return fmt.Sprintf("api error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// retryable reports whether the gateway or server may succeed on a later
// attempt.
func retryable(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// idempotent reports whether a request may be repeated. Only these are
// retried; POST and PATCH fail on the first transient error.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) backOff() backoff.BackOff {
	if c.NewBackOff != nil {
		return c.NewBackOff()
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = defaultRetryMaxElapsed
	return bo
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}
	retry := idempotent(method)
	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil || !retry {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			apiErr := readAPIError(resp)
			if retry && retryable(resp.StatusCode) {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s %s: %w", method, endpoint, err))
		}
		return nil
	}, backoff.WithContext(c.backOff(), ctx))
}

func readAPIError(resp *http.Response) *APIError {
	b, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

func path(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.Join(escaped, "/")
}
