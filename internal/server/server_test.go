package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/config"
	"foreman/internal/db"
	"foreman/internal/domain"
	"foreman/internal/engine"
	"foreman/internal/migrate"
)

type testServer struct {
	URL    string
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err, "open db")
	_, err = migrate.Migrate(context.Background(), conn)
	require.NoError(t, err, "migrate")

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.New(conn, config.Default())
	e.Log = quiet
	handler, err := New(Config{Engine: e, Logger: quiet})
	require.NoError(t, err, "build handler")

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err, "listen")
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		conn.Close()
	})
	return &testServer{URL: "http://" + ln.Addr().String() + "/v1", client: &http.Client{}}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := s.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) seed(t *testing.T) (domain.Project, domain.Orchestration) {
	t.Helper()
	status, data := s.do(t, http.MethodPost, "/projects", map[string]any{"name": "app", "repo_path": "/repo/app"})
	require.Equal(t, http.StatusCreated, status, string(data))
	p := decode[domain.Project](t, data)
	status, data = s.do(t, http.MethodPost, "/projects/"+p.ID+"/orchestrations", map[string]any{"feature_name": "login"})
	require.Equal(t, http.StatusCreated, status, string(data))
	return p, decode[domain.Orchestration](t, data)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	status, data := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestActionFlow(t *testing.T) {
	srv := newTestServer(t)
	_, o := srv.seed(t)

	status, data := srv.do(t, http.MethodPost, "/actions", map[string]any{
		"node_id": "node-1", "orchestration_id": o.ID, "type": "approve_gate", "payload": map[string]any{"gate": "plan"},
	})
	require.Equal(t, http.StatusCreated, status, string(data))
	id := decode[IDResponse](t, data).ID

	status, data = srv.do(t, http.MethodGet, "/actions?node_id=node-1", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	pending := decode[[]domain.InboundAction](t, data)
	require.Len(t, pending, 1)
	assert.JSONEq(t, `{"gate":"plan"}`, string(pending[0].Payload))

	status, data = srv.do(t, http.MethodPost, "/actions/"+id+"/claim", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.True(t, decode[domain.ClaimResult](t, data).Success)

	status, data = srv.do(t, http.MethodPost, "/actions/"+id+"/claim", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	lost := decode[domain.ClaimResult](t, data)
	assert.False(t, lost.Success)
	assert.Equal(t, domain.ClaimAlreadyClaimed, lost.Reason)

	status, data = srv.do(t, http.MethodPost, "/actions/"+id+"/complete", map[string]any{"success": true, "result": map[string]any{"ok": true}})
	require.Equal(t, http.StatusNoContent, status, string(data))

	status, data = srv.do(t, http.MethodGet, "/actions/"+id, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, domain.ActionCompleted, decode[domain.InboundAction](t, data).Status)

	status, data = srv.do(t, http.MethodPost, "/actions/missing/claim", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, domain.ClaimNotFound, decode[domain.ClaimResult](t, data).Reason)
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	p, o := srv.seed(t)
	seed := map[string]any{"tasks": []map[string]any{{"task_number": 1, "subject": "a"}}}

	status, data := srv.do(t, http.MethodPost, "/orchestrations/"+o.ID+"/phases/1/tasks", seed)
	require.Equal(t, http.StatusCreated, status, string(data))

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown project", http.MethodGet, "/projects/nope", nil, http.StatusNotFound, "not_found"},
		{"duplicate repo path", http.MethodPost, "/projects", map[string]any{"name": "x", "repo_path": p.RepoPath}, http.StatusConflict, "conflict"},
		{"seed twice", http.MethodPost, "/orchestrations/" + o.ID + "/phases/1/tasks", seed, http.StatusConflict, "already_seeded"},
		{"cyclic seed", http.MethodPost, "/orchestrations/" + o.ID + "/phases/2/tasks", map[string]any{"tasks": []map[string]any{
			{"task_number": 1, "subject": "a", "depends_on": []int{2}},
			{"task_number": 2, "subject": "b", "depends_on": []int{1}},
		}}, http.StatusBadRequest, "validation_failed"},
		{"bad transition", http.MethodPatch, "/orchestrations/" + o.ID + "/phases/1/tasks/1", map[string]any{"status": "completed"}, http.StatusConflict, "invalid_transition"},
		{"stale revision", http.MethodPatch, "/orchestrations/" + o.ID + "/phases/1/tasks/1", map[string]any{"subject": "b", "expected_revision": 9}, http.StatusConflict, "revision_conflict"},
		{"bad enum", http.MethodPut, "/orchestrations/" + o.ID + "/status", map[string]any{"status": "nope"}, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, data := srv.do(t, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, status, string(data))
			var env struct {
				Error apiErrorBody `json:"error"`
			}
			require.NoError(t, json.Unmarshal(data, &env), string(data))
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestTimelineAndDelete(t *testing.T) {
	srv := newTestServer(t)
	p, o := srv.seed(t)

	for _, at := range []string{"2024-01-01T00:00:02Z", "2024-01-01T00:00:01Z"} {
		status, data := srv.do(t, http.MethodPost, "/orchestrations/"+o.ID+"/events", map[string]any{
			"event_type": "note", "source": "test", "summary": at, "recorded_at": at,
		})
		require.Equal(t, http.StatusCreated, status, string(data))
	}
	status, data := srv.do(t, http.MethodGet, "/orchestrations/"+o.ID+"/events?since=2024-01-01T00:00:01Z", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	events := decode[[]domain.OrchestrationEvent](t, data)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-01-01T00:00:02Z", events[0].Summary)

	status, data = srv.do(t, http.MethodGet, "/orchestrations/"+o.ID+"/timeline", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Len(t, decode[[]domain.TimelineEntry](t, data), 2)

	status, data = srv.do(t, http.MethodDelete, "/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	res := decode[engine.DeleteResult](t, data)
	assert.True(t, res.Deleted)
	assert.Equal(t, 1, res.DeletedOrchestrations)

	status, _ = srv.do(t, http.MethodGet, "/orchestrations/"+o.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOpenAPI(t *testing.T) {
	srv := newTestServer(t)
	status, data := srv.do(t, http.MethodGet, "/openapi.json", nil)
	require.Equal(t, http.StatusOK, status)
	doc := decode[map[string]any](t, data)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/v1/actions/{action_id}/claim")
}
