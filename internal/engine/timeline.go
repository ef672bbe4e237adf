package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"foreman/internal/domain"
	"foreman/internal/events"
)

// EventInput is a caller-described timeline event.
type EventInput struct {
	PhaseNumber *string
	EventType   string
	Source      string
	Summary     string
	Detail      *string
	RecordedAt  string
}

// RecordEvent appends an event to the orchestration's timeline. RecordedAt
// comes from the caller and decides the event's position.
func (e Engine) RecordEvent(ctx context.Context, orchestrationID string, in EventInput) (id string, err error) {
	ctx, done := e.observe(ctx, "record_event", attribute.String("type", in.EventType))
	defer func() { done(err) }()

	if err := required("event type", in.EventType); err != nil {
		return "", err
	}
	if err := required("source", in.Source); err != nil {
		return "", err
	}
	if err := required("recorded at", in.RecordedAt); err != nil {
		return "", err
	}
	recordedAt, err := domain.NormalizeTime(in.RecordedAt)
	if err != nil {
		return "", invalid("%v", err)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return "", err
	}
	ev, err := e.events().Append(ctx, tx, domain.OrchestrationEvent{
		OrchestrationID: orchestrationID,
		PhaseNumber:     in.PhaseNumber,
		EventType:       in.EventType,
		Source:          in.Source,
		Summary:         in.Summary,
		Detail:          in.Detail,
		RecordedAt:      recordedAt,
	})
	if err != nil {
		return "", err
	}
	return ev.ID, tx.Commit()
}

func sinceCursor(since string) (string, error) {
	if since == "" {
		return "", nil
	}
	s, err := domain.NormalizeTime(since)
	if err != nil {
		return "", invalid("%v", err)
	}
	return s, nil
}

// ListEvents pages through the timeline oldest first. since is exclusive;
// pass the last RecordedAt of a page to fetch the next one.
func (e Engine) ListEvents(ctx context.Context, orchestrationID, since string, limit int) ([]domain.OrchestrationEvent, error) {
	cursor, err := sinceCursor(since)
	if err != nil {
		return nil, err
	}
	return e.Repo.ListEvents(ctx, orchestrationID, cursor, e.pageSize(limit))
}

// Timeline merges recorded events, task lifecycle events, finished checks and
// gate decisions into one ascending stream.
func (e Engine) Timeline(ctx context.Context, orchestrationID, since string, limit int) (out []domain.TimelineEntry, err error) {
	ctx, done := e.observe(ctx, "timeline")
	defer func() { done(err) }()

	cursor, err := sinceCursor(since)
	if err != nil {
		return nil, err
	}
	limit = e.pageSize(limit)
	var evs, tasks, checks, gates []domain.TimelineEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.Repo.ListEvents(gctx, orchestrationID, cursor, limit)
		evs = events.FromEvents(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.Repo.ListTaskEvents(gctx, orchestrationID, cursor, limit)
		tasks = events.FromTaskEvents(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.Repo.ListFinishedChecks(gctx, orchestrationID, cursor, limit)
		checks = events.FromChecks(rows)
		return err
	})
	g.Go(func() error {
		rows, err := e.Repo.ListDecidedGates(gctx, orchestrationID, cursor, limit)
		gates = events.FromGates(rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return events.Merge(limit, evs, tasks, checks, gates), nil
}
