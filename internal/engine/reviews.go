package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

func (e Engine) CreateReview(ctx context.Context, orchestrationID string, phaseNumber *string, reviewerAgent string) (id string, err error) {
	ctx, done := e.observe(ctx, "create_review")
	defer func() { done(err) }()

	if err := required("reviewer agent", reviewerAgent); err != nil {
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
	rv := domain.Review{
		ID:              uuid.New().String(),
		OrchestrationID: orchestrationID,
		PhaseNumber:     phaseNumber,
		ReviewerAgent:   reviewerAgent,
		State:           domain.ReviewOpen,
		StartedAt:       e.stamp(),
	}
	if err := e.Repo.InsertReview(ctx, tx, rv); err != nil {
		return "", err
	}
	return rv.ID, tx.Commit()
}

// CompleteReview closes an open review. A review closes exactly once.
func (e Engine) CompleteReview(ctx context.Context, reviewID string, state domain.ReviewState) (err error) {
	ctx, done := e.observe(ctx, "complete_review", attribute.String("state", string(state)))
	defer func() { done(err) }()

	if !state.Terminal() {
		return invalid("review state %q is not terminal", state)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	rv, err := e.Repo.GetReview(ctx, tx, reviewID)
	if err != nil {
		return wrapNotFound(err, "review", reviewID)
	}
	if rv.State != domain.ReviewOpen {
		return badTransition("review %s is already %s", reviewID, rv.State)
	}
	ok, err := e.Repo.CloseReview(ctx, tx, reviewID, state, e.stamp())
	if err != nil {
		return err
	}
	if !ok {
		return badTransition("review %s is no longer open", reviewID)
	}
	return tx.Commit()
}

func (e Engine) GetReview(ctx context.Context, reviewID string) (domain.Review, error) {
	rv, err := e.Repo.GetReview(ctx, nil, reviewID)
	return rv, wrapNotFound(err, "review", reviewID)
}

func (e Engine) ListReviews(ctx context.Context, orchestrationID string) ([]domain.Review, error) {
	return e.Repo.ListReviews(ctx, orchestrationID)
}

// StartCheck registers a running check under a review. Check names are
// unique per review.
func (e Engine) StartCheck(ctx context.Context, reviewID, orchestrationID, name string, kind domain.CheckKind, command *string) (id string, err error) {
	ctx, done := e.observe(ctx, "start_check", attribute.String("check", name))
	defer func() { done(err) }()

	if err := required("check name", name); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", invalid("unknown check kind %q", kind)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	rv, err := e.Repo.GetReview(ctx, tx, reviewID)
	if err != nil {
		return "", wrapNotFound(err, "review", reviewID)
	}
	if orchestrationID == "" {
		orchestrationID = rv.OrchestrationID
	}
	if rv.OrchestrationID != orchestrationID {
		return "", invalid("review %s belongs to orchestration %s, not %s", reviewID, rv.OrchestrationID, orchestrationID)
	}
	c := domain.ReviewCheck{
		ID:              uuid.New().String(),
		ReviewID:        reviewID,
		OrchestrationID: orchestrationID,
		Name:            name,
		Kind:            kind,
		Command:         command,
		Status:          domain.CheckRunning,
		StartedAt:       e.stamp(),
	}
	if err := e.Repo.InsertCheck(ctx, tx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return "", badTransition("check %s already started for review %s", name, reviewID)
		}
		return "", err
	}
	return c.ID, tx.Commit()
}

// CompleteCheck finishes a running check and records its duration in
// milliseconds from start to completion.
func (e Engine) CompleteCheck(ctx context.Context, reviewID, name string, status domain.CheckStatus, comment, output *string) (c domain.ReviewCheck, err error) {
	ctx, done := e.observe(ctx, "complete_check", attribute.String("check", name), attribute.String("status", string(status)))
	defer func() { done(err) }()

	if !status.Terminal() {
		return c, invalid("check status %q is not terminal", status)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return c, err
	}
	defer tx.Rollback()
	c, err = e.Repo.GetCheck(ctx, tx, reviewID, name)
	if err != nil {
		return c, wrapNotFound(err, "check", name)
	}
	if c.Status != domain.CheckRunning {
		return c, badTransition("check %s is already %s", name, c.Status)
	}
	started, err := domain.ParseTime(c.StartedAt)
	if err != nil {
		return c, err
	}
	now := e.now()
	completedAt := domain.FormatTime(now)
	// Both stamps are stored at millisecond precision, so measure between them.
	completed, _ := domain.ParseTime(completedAt)
	duration := completed.Sub(started).Milliseconds()

	c.Status = status
	c.Comment = comment
	c.Output = output
	c.CompletedAt = &completedAt
	c.DurationMs = &duration
	if err := e.Repo.FinishCheck(ctx, tx, c); err != nil {
		return c, err
	}
	return c, tx.Commit()
}

func (e Engine) ListChecks(ctx context.Context, reviewID string) ([]domain.ReviewCheck, error) {
	return e.Repo.ListChecks(ctx, reviewID)
}
