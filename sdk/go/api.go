package foremansdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type idResponse struct {
	ID string `json:"id"`
}

// SubmitAction queues an action for nodeID and returns its id.
func (c *Client) SubmitAction(ctx context.Context, nodeID, orchestrationID, actionType string, payload any) (string, error) {
	body := map[string]any{
		"node_id":          nodeID,
		"orchestration_id": orchestrationID,
		"type":             actionType,
	}
	if payload != nil {
		body["payload"] = payload
	}
	var resp idResponse
	err := c.do(ctx, http.MethodPost, "actions", body, &resp)
	return resp.ID, err
}

// PendingActions lists the node's pending actions oldest first.
func (c *Client) PendingActions(ctx context.Context, nodeID string) ([]Action, error) {
	var resp []Action
	err := c.do(ctx, http.MethodGet, "actions?node_id="+url.QueryEscape(nodeID), nil, &resp)
	return resp, err
}

// Claim tries to take an action. Losing a race is a result, not an error.
func (c *Client) Claim(ctx context.Context, actionID string) (ClaimResult, error) {
	var resp ClaimResult
	err := c.do(ctx, http.MethodPost, path("actions", actionID, "claim"), nil, &resp)
	return resp, err
}

func (c *Client) CompleteAction(ctx context.Context, actionID string, success bool, result any) error {
	body := map[string]any{"success": success}
	if result != nil {
		body["result"] = result
	}
	return c.do(ctx, http.MethodPost, path("actions", actionID, "complete"), body, nil)
}

func (c *Client) GetAction(ctx context.Context, actionID string) (Action, error) {
	var resp Action
	err := c.do(ctx, http.MethodGet, path("actions", actionID), nil, &resp)
	return resp, err
}

// SeedTasks seeds a phase. Seeding an already seeded phase fails with a 409
// whose Code is "already_seeded".
func (c *Client) SeedTasks(ctx context.Context, orchestrationID, phase string, seeds []TaskSeed) ([]string, error) {
	var resp struct {
		IDs []string `json:"ids"`
	}
	err := c.do(ctx, http.MethodPost, path("orchestrations", orchestrationID, "phases", phase, "tasks"), map[string]any{"tasks": seeds}, &resp)
	return resp.IDs, err
}

func (c *Client) ReadyTasks(ctx context.Context, orchestrationID, phase string) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, path("orchestrations", orchestrationID, "phases", phase, "ready-tasks"), nil, &resp)
	return resp, err
}

func (c *Client) UpdateTask(ctx context.Context, orchestrationID, phase string, taskNumber int, u TaskUpdate) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPatch, path("orchestrations", orchestrationID, "phases", phase, "tasks", strconv.Itoa(taskNumber)), u, &resp)
	return resp, err
}

// RecordEvent appends to the orchestration timeline. recordedAt is RFC 3339.
func (c *Client) RecordEvent(ctx context.Context, orchestrationID string, ev Event) (string, error) {
	body := map[string]any{
		"event_type":  ev.EventType,
		"source":      ev.Source,
		"summary":     ev.Summary,
		"recorded_at": ev.RecordedAt,
	}
	if ev.PhaseNumber != nil {
		body["phase_number"] = *ev.PhaseNumber
	}
	if ev.Detail != nil {
		body["detail"] = *ev.Detail
	}
	var resp idResponse
	err := c.do(ctx, http.MethodPost, path("orchestrations", orchestrationID, "events"), body, &resp)
	return resp.ID, err
}

// Timeline returns up to limit merged entries after since. Zero values use
// the server defaults.
func (c *Client) Timeline(ctx context.Context, orchestrationID, since string, limit int) ([]TimelineEntry, error) {
	q := url.Values{}
	if since != "" {
		q.Set("since", since)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := path("orchestrations", orchestrationID, "timeline")
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []TimelineEntry
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) CreateReview(ctx context.Context, orchestrationID string, phase *string, reviewer string) (string, error) {
	body := map[string]any{"reviewer_agent": reviewer}
	if phase != nil {
		body["phase_number"] = *phase
	}
	var resp idResponse
	err := c.do(ctx, http.MethodPost, path("orchestrations", orchestrationID, "reviews"), body, &resp)
	return resp.ID, err
}

func (c *Client) CompleteReview(ctx context.Context, reviewID, state string) error {
	return c.do(ctx, http.MethodPost, path("reviews", reviewID, "complete"), map[string]any{"state": state}, nil)
}

func (c *Client) StartCheck(ctx context.Context, reviewID, name, kind string, command *string) (string, error) {
	body := map[string]any{"name": name, "kind": kind}
	if command != nil {
		body["command"] = *command
	}
	var resp idResponse
	err := c.do(ctx, http.MethodPost, path("reviews", reviewID, "checks"), body, &resp)
	return resp.ID, err
}

func (c *Client) CompleteCheck(ctx context.Context, reviewID, name, status string, comment, output *string) (Check, error) {
	body := map[string]any{"status": status}
	if comment != nil {
		body["comment"] = *comment
	}
	if output != nil {
		body["output"] = *output
	}
	var resp Check
	err := c.do(ctx, http.MethodPost, path("reviews", reviewID, "checks", name, "complete"), body, &resp)
	return resp, err
}

func (c *Client) UpsertGate(ctx context.Context, orchestrationID, gateID, status, owner string, decidedBy *string, summary string) (string, error) {
	body := map[string]any{"status": status, "owner": owner, "summary": summary}
	if decidedBy != nil {
		body["decided_by"] = *decidedBy
	}
	var resp idResponse
	err := c.do(ctx, http.MethodPut, path("orchestrations", orchestrationID, "gates", gateID), body, &resp)
	return resp.ID, err
}

func (c *Client) Gates(ctx context.Context, orchestrationID string) ([]Gate, error) {
	var resp []Gate
	err := c.do(ctx, http.MethodGet, path("orchestrations", orchestrationID, "gates"), nil, &resp)
	return resp, err
}

// SaveSupervisorState stores the snapshot for feature; an empty updatedAt
// lets the server stamp it.
func (c *Client) SaveSupervisorState(ctx context.Context, nodeID, feature string, state any, updatedAt string) (string, error) {
	body := map[string]any{"node_id": nodeID, "state": state}
	if updatedAt != "" {
		body["updated_at"] = updatedAt
	}
	var resp idResponse
	err := c.do(ctx, http.MethodPut, path("supervisor", feature), body, &resp)
	return resp.ID, err
}

func (c *Client) SupervisorState(ctx context.Context, nodeID, feature string) (SupervisorState, error) {
	var resp SupervisorState
	err := c.do(ctx, http.MethodGet, path("supervisor", feature)+"?node_id="+url.QueryEscape(nodeID), nil, &resp)
	return resp, err
}
