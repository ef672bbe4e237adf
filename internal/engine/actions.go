package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

func normalizeJSON(field string, raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(raw) {
		return nil, invalid("%s must be valid JSON", field)
	}
	return raw, nil
}

// SubmitAction queues a pending action for nodeID.
func (e Engine) SubmitAction(ctx context.Context, nodeID, orchestrationID, actionType string, payload json.RawMessage) (id string, err error) {
	ctx, done := e.observe(ctx, "submit_action", attribute.String("node", nodeID), attribute.String("type", actionType))
	defer func() { done(err) }()

	if err := required("node id", nodeID); err != nil {
		return "", err
	}
	if err := required("action type", actionType); err != nil {
		return "", err
	}
	payload, err = normalizeJSON("payload", payload)
	if err != nil {
		return "", err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return "", err
	}
	a := domain.InboundAction{
		ID:              uuid.New().String(),
		NodeID:          nodeID,
		OrchestrationID: orchestrationID,
		Type:            actionType,
		Payload:         payload,
		Status:          domain.ActionPending,
		CreatedAt:       e.stamp(),
	}
	if err := e.Repo.InsertAction(ctx, tx, a); err != nil {
		return "", err
	}
	return a.ID, tx.Commit()
}

// ClaimAction moves a pending action to claimed. Among any number of
// concurrent callers for the same action exactly one succeeds; the rest get
// already_claimed. Claim failures are results, not errors.
func (e Engine) ClaimAction(ctx context.Context, actionID string) (res domain.ClaimResult, err error) {
	ctx, done := e.observe(ctx, "claim_action")
	defer func() { done(err) }()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()
	a, err := e.Repo.GetAction(ctx, tx, actionID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.ClaimResult{Reason: domain.ClaimNotFound}, nil
	}
	if err != nil {
		return res, err
	}
	if a.Status != domain.ActionPending {
		return domain.ClaimResult{Reason: domain.ClaimAlreadyClaimed}, nil
	}
	ok, err := e.Repo.ClaimPendingAction(ctx, tx, actionID, e.stamp())
	if err != nil {
		return res, err
	}
	if !ok {
		return domain.ClaimResult{Reason: domain.ClaimAlreadyClaimed}, nil
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	e.log().Debug("action claimed", "action", actionID, "node", a.NodeID)
	return domain.ClaimResult{Success: true}, nil
}

// CompleteAction records the outcome of an action. It does not check the
// current status, so a terminal action is overwritten.
func (e Engine) CompleteAction(ctx context.Context, actionID string, result json.RawMessage, success bool) (err error) {
	ctx, done := e.observe(ctx, "complete_action", attribute.Bool("success", success))
	defer func() { done(err) }()

	if len(result) > 0 && !json.Valid(result) {
		return invalid("result must be valid JSON")
	}
	status := domain.ActionFailed
	if success {
		status = domain.ActionCompleted
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	a, err := e.Repo.GetAction(ctx, tx, actionID)
	if err != nil {
		return wrapNotFound(err, "action", actionID)
	}
	if a.Status.Terminal() {
		e.log().Warn("overwriting finished action", "action", actionID, "from", a.Status, "to", status)
	} else if a.Status == domain.ActionPending {
		e.log().Warn("completing unclaimed action", "action", actionID)
	}
	if err := e.Repo.FinishAction(ctx, tx, actionID, status, result, e.stamp()); err != nil {
		return wrapNotFound(err, "action", actionID)
	}
	return tx.Commit()
}

func (e Engine) GetAction(ctx context.Context, actionID string) (domain.InboundAction, error) {
	a, err := e.Repo.GetAction(ctx, nil, actionID)
	return a, wrapNotFound(err, "action", actionID)
}

// PendingActions lists the node's pending actions in creation order.
func (e Engine) PendingActions(ctx context.Context, nodeID string) ([]domain.InboundAction, error) {
	return e.Repo.ListPendingActions(ctx, nodeID)
}

// RequeueStaleClaims returns actions claimed longer than olderThan ago to
// pending so another node can claim them.
func (e Engine) RequeueStaleClaims(ctx context.Context, olderThan time.Duration) (n int64, err error) {
	ctx, done := e.observe(ctx, "requeue_stale_claims")
	defer func() { done(err) }()

	if olderThan <= 0 {
		return 0, invalid("age must be positive")
	}
	cutoff := domain.FormatTime(e.now().Add(-olderThan))
	n, err = e.Repo.RequeueClaimedBefore(ctx, nil, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.log().Info("requeued stale claims", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
