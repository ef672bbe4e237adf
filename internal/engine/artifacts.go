package engine

import (
	"context"

	"github.com/google/uuid"

	"foreman/internal/domain"
)

type CommitInput struct {
	PhaseNumber *string
	SHA         string
	Message     string
	Author      string
	CommittedAt string
}

func (e Engine) RecordCommit(ctx context.Context, orchestrationID string, in CommitInput) (c domain.Commit, err error) {
	ctx, done := e.observe(ctx, "record_commit")
	defer func() { done(err) }()

	if err := required("sha", in.SHA); err != nil {
		return c, err
	}
	committedAt := e.stamp()
	if in.CommittedAt != "" {
		if committedAt, err = domain.NormalizeTime(in.CommittedAt); err != nil {
			return c, invalid("%v", err)
		}
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return c, err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return c, err
	}
	c = domain.Commit{
		ID:              uuid.New().String(),
		OrchestrationID: orchestrationID,
		PhaseNumber:     in.PhaseNumber,
		SHA:             in.SHA,
		Message:         in.Message,
		Author:          in.Author,
		CommittedAt:     committedAt,
	}
	if err := e.Repo.InsertCommit(ctx, tx, c); err != nil {
		return domain.Commit{}, err
	}
	return c, tx.Commit()
}

func (e Engine) ListCommits(ctx context.Context, orchestrationID string) ([]domain.Commit, error) {
	return e.Repo.ListCommits(ctx, orchestrationID)
}

func (e Engine) SavePlan(ctx context.Context, orchestrationID string, phaseNumber *string, path, content string) (p domain.Plan, err error) {
	ctx, done := e.observe(ctx, "save_plan")
	defer func() { done(err) }()

	if err := required("path", path); err != nil {
		return p, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return p, err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return p, err
	}
	p = domain.Plan{
		ID:              uuid.New().String(),
		OrchestrationID: orchestrationID,
		PhaseNumber:     phaseNumber,
		Path:            path,
		Content:         content,
		CreatedAt:       e.stamp(),
	}
	if err := e.Repo.InsertPlan(ctx, tx, p); err != nil {
		return domain.Plan{}, err
	}
	return p, tx.Commit()
}

func (e Engine) ListPlans(ctx context.Context, orchestrationID string) ([]domain.Plan, error) {
	return e.Repo.ListPlans(ctx, orchestrationID)
}
