package foremansdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
}

func TestClaimDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/actions/a%201/claim", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":false,"reason":"already_claimed"}`)
	}))
	defer srv.Close()

	c := New(srv.URL + "/v1/")
	res, err := c.Claim(context.Background(), "a 1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "already_claimed", res.Reason)
}

func TestRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var got map[string]any
		assert.NoError(t, json.Unmarshal(body, &got), "body resent on every attempt")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"id":"gate-1"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.NewBackOff = fastRetry
	id, err := c.UpsertGate(context.Background(), "orch", "plan", "approved", "lead", nil, "ok")
	require.NoError(t, err)
	assert.Equal(t, "gate-1", id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStateChangingPostsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the first claim commits server side, then the gateway drops the reply
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":false,"reason":"already_claimed"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.NewBackOff = fastRetry
	_, err := c.Claim(context.Background(), "act-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())

	calls.Store(0)
	_, err = c.SubmitAction(context.Background(), "node", "orch", "approve", map[string]any{"gate": "plan"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

type failingTransport struct{ calls atomic.Int32 }

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, errors.New("connection reset")
}

func TestTransportErrorsOnlyRetryIdempotentCalls(t *testing.T) {
	tr := &failingTransport{}
	c := New("http://foreman.invalid/v1")
	c.HTTPClient = &http.Client{Transport: tr}
	c.NewBackOff = fastRetry

	_, err := c.Claim(context.Background(), "act-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), tr.calls.Load())

	tr.calls.Store(0)
	_, err = c.Gates(context.Background(), "orch")
	require.Error(t, err)
	assert.Equal(t, int32(4), tr.calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":{"code":"already_seeded","message":"phase already seeded"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.NewBackOff = fastRetry
	_, err := c.SeedTasks(context.Background(), "orch", "1", []TaskSeed{{TaskNumber: 1, Subject: "a"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "already_seeded", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.NewBackOff = fastRetry
	_, err := c.Gates(context.Background(), "orch")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, int32(4), calls.Load())
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":"not_found","message":"supervisor state login: not found"}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).SupervisorState(context.Background(), "node", "login")
	assert.True(t, IsNotFound(err))
}
