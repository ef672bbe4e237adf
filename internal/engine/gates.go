package engine

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
)

// UpsertGate writes the gate's current decision. decidedAt is stamped for
// approved or blocked and cleared for pending.
func (e Engine) UpsertGate(ctx context.Context, orchestrationID string, gateID domain.GateID, status domain.GateStatus, owner string, decidedBy *string, summary string) (id string, err error) {
	ctx, done := e.observe(ctx, "upsert_gate", attribute.String("gate", string(gateID)), attribute.String("status", string(status)))
	defer func() { done(err) }()

	if !gateID.Valid() {
		return "", invalid("unknown gate %q", gateID)
	}
	if !status.Valid() {
		return "", invalid("unknown gate status %q", status)
	}
	if err := required("owner", owner); err != nil {
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
	now := e.stamp()
	g := domain.ReviewGate{
		ID:              uuid.New().String(),
		OrchestrationID: orchestrationID,
		GateID:          gateID,
		Status:          status,
		Owner:           owner,
		DecidedBy:       decidedBy,
		Summary:         summary,
		UpdatedAt:       now,
	}
	if status.Decided() {
		g.DecidedAt = &now
	}
	id, err = e.Repo.UpsertGate(ctx, tx, g)
	if err != nil {
		return "", err
	}
	return id, tx.Commit()
}

func (e Engine) GetGate(ctx context.Context, orchestrationID string, gateID domain.GateID) (domain.ReviewGate, error) {
	if !gateID.Valid() {
		return domain.ReviewGate{}, invalid("unknown gate %q", gateID)
	}
	g, err := e.Repo.GetGate(ctx, nil, orchestrationID, gateID)
	return g, wrapNotFound(err, "gate", string(gateID))
}

// ListGates returns the orchestration's gates in pipeline order.
func (e Engine) ListGates(ctx context.Context, orchestrationID string) ([]domain.ReviewGate, error) {
	return e.Repo.ListGates(ctx, orchestrationID)
}
