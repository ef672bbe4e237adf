package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

// Writer appends timeline rows inside the caller's transaction so the log
// commits or rolls back together with the change it describes.
type Writer struct {
	Repo repo.Repo
	Now  func() time.Time
}

func (w Writer) now() string {
	if w.Now == nil {
		return domain.FormatTime(time.Now())
	}
	return domain.FormatTime(w.Now())
}

// Task records a task lifecycle event. from is empty for creation.
func (w Writer) Task(ctx context.Context, tx *sql.Tx, t domain.ExecutionTask, evtType string, from domain.TaskStatus) error {
	ev := domain.TaskEvent{
		ID:              uuid.New().String(),
		OrchestrationID: t.OrchestrationID,
		PhaseNumber:     t.PhaseNumber,
		TaskNumber:      t.TaskNumber,
		EventType:       evtType,
		RecordedAt:      w.now(),
	}
	if from != "" {
		f := string(from)
		ev.FromStatus = &f
	}
	to := string(t.Status)
	ev.ToStatus = &to
	return w.Repo.InsertTaskEvent(ctx, tx, ev)
}

// Append stores an orchestration event as given. RecordedAt must already be
// normalised; an empty id is assigned.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, ev domain.OrchestrationEvent) (domain.OrchestrationEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.RecordedAt == "" {
		ev.RecordedAt = w.now()
	}
	return ev, w.Repo.InsertEvent(ctx, tx, ev)
}
