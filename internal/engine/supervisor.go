package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

// UpsertSupervisorState keeps one logical snapshot per feature: the most
// recent record is patched in place, or a first one is inserted. nodeID is
// stored for reference but does not take part in the lookup.
func (e Engine) UpsertSupervisorState(ctx context.Context, nodeID, featureName string, state json.RawMessage, updatedAt string) (id string, err error) {
	ctx, done := e.observe(ctx, "upsert_supervisor_state", attribute.String("feature", featureName))
	defer func() { done(err) }()

	if err := required("feature name", featureName); err != nil {
		return "", err
	}
	if len(state) == 0 || !json.Valid(state) {
		return "", invalid("state must be valid JSON")
	}
	if updatedAt == "" {
		updatedAt = e.stamp()
	} else if updatedAt, err = domain.NormalizeTime(updatedAt); err != nil {
		return "", invalid("%v", err)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	cur, err := e.Repo.LatestSupervisorState(ctx, tx, featureName)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		cur = domain.SupervisorState{ID: uuid.New().String(), NodeID: nodeID, FeatureName: featureName, State: state, UpdatedAt: updatedAt}
		if err := e.Repo.InsertSupervisorState(ctx, tx, cur); err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		cur.NodeID = nodeID
		cur.State = state
		cur.UpdatedAt = updatedAt
		if err := e.Repo.UpdateSupervisorState(ctx, tx, cur); err != nil {
			return "", err
		}
	}
	return cur.ID, tx.Commit()
}

// GetSupervisorState returns the latest snapshot for featureName whichever
// node wrote it.
func (e Engine) GetSupervisorState(ctx context.Context, nodeID, featureName string) (domain.SupervisorState, error) {
	s, err := e.Repo.LatestSupervisorState(ctx, nil, featureName)
	if err != nil {
		return s, wrapNotFound(err, "supervisor state", featureName)
	}
	if nodeID != "" && s.NodeID != nodeID {
		e.log().Debug("supervisor state written by another node", "feature", featureName, "node", s.NodeID, "requested_by", nodeID)
	}
	return s, nil
}
