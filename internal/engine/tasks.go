package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

// SeedExecutionTasks writes the task graph of a phase. A phase can be seeded
// exactly once; later calls fail with ErrAlreadySeeded.
func (e Engine) SeedExecutionTasks(ctx context.Context, orchestrationID, phaseNumber string, seeds []domain.TaskSeed) (ids []string, err error) {
	ctx, done := e.observe(ctx, "seed_execution_tasks", attribute.String("phase", phaseNumber), attribute.Int("tasks", len(seeds)))
	defer func() { done(err) }()

	if err := required("phase number", phaseNumber); err != nil {
		return nil, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return nil, err
	}
	n, err := e.Repo.CountTasks(ctx, tx, orchestrationID, phaseNumber)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrAlreadySeeded
	}
	if err := domain.ValidateTaskGraph(seeds); err != nil {
		return nil, invalid("%v", err)
	}
	now := e.stamp()
	for _, s := range seeds {
		deps := append([]int{}, s.DependsOn...)
		t := domain.ExecutionTask{
			ID:              uuid.New().String(),
			OrchestrationID: orchestrationID,
			PhaseNumber:     phaseNumber,
			TaskNumber:      s.TaskNumber,
			Subject:         s.Subject,
			Description:     s.Description,
			Status:          domain.TaskPending,
			DependsOn:       deps,
			Revision:        1,
			Model:           s.Model,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := e.Repo.InsertTask(ctx, tx, t); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return nil, ErrAlreadySeeded
			}
			return nil, err
		}
		if err := e.events().Task(ctx, tx, t, "seeded", ""); err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	e.log().Debug("phase seeded", "orchestration", orchestrationID, "phase", phaseNumber, "tasks", len(ids))
	return ids, nil
}

// ListExecutionTasks lists tasks ordered by phase then task number. A nil
// phase returns every phase.
func (e Engine) ListExecutionTasks(ctx context.Context, orchestrationID string, phaseNumber *string) ([]domain.ExecutionTask, error) {
	return e.Repo.ListTasks(ctx, nil, orchestrationID, phaseNumber)
}

func (e Engine) GetExecutionTask(ctx context.Context, orchestrationID, phaseNumber string, taskNumber int) (domain.ExecutionTask, error) {
	t, err := e.Repo.GetTask(ctx, nil, orchestrationID, phaseNumber, taskNumber)
	if errors.Is(err, repo.ErrNotFound) {
		return t, ErrNotFound
	}
	return t, err
}

// ReadyExecutionTasks returns pending tasks of a phase whose dependencies
// have all completed.
func (e Engine) ReadyExecutionTasks(ctx context.Context, orchestrationID, phaseNumber string) ([]domain.ExecutionTask, error) {
	tasks, err := e.Repo.ListTasks(ctx, nil, orchestrationID, &phaseNumber)
	if err != nil {
		return nil, err
	}
	return domain.ReadyTasks(tasks), nil
}

// TaskUpdate changes a task. Nil fields are left as stored. When
// ExpectedRevision is set the update only applies to that revision.
type TaskUpdate struct {
	Subject          *string
	Description      *string
	Model            *string
	Status           *domain.TaskStatus
	ExpectedRevision *int
}

// UpdateExecutionTask applies u. Content changes bump the revision; status
// changes follow the task transition table. Dependencies are not checked.
func (e Engine) UpdateExecutionTask(ctx context.Context, orchestrationID, phaseNumber string, taskNumber int, u TaskUpdate) (t domain.ExecutionTask, err error) {
	ctx, done := e.observe(ctx, "update_execution_task", attribute.String("phase", phaseNumber), attribute.Int("task", taskNumber))
	defer func() { done(err) }()

	if u.Subject != nil && *u.Subject == "" {
		return t, invalid("subject must not be empty")
	}
	if u.Status != nil && !u.Status.Valid() {
		return t, invalid("unknown task status %q", *u.Status)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()
	t, err = e.Repo.GetTask(ctx, tx, orchestrationID, phaseNumber, taskNumber)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return t, ErrNotFound
		}
		return t, err
	}
	if u.ExpectedRevision != nil && *u.ExpectedRevision != t.Revision {
		return t, ErrRevisionConflict
	}

	contentChanged := false
	if u.Subject != nil && *u.Subject != t.Subject {
		t.Subject = *u.Subject
		contentChanged = true
	}
	if u.Description != nil && !sameString(t.Description, u.Description) {
		t.Description = u.Description
		contentChanged = true
	}
	if u.Model != nil && !sameString(t.Model, u.Model) {
		t.Model = u.Model
		contentChanged = true
	}
	from := t.Status
	statusChanged := false
	if u.Status != nil && *u.Status != t.Status {
		if !t.Status.CanTransition(*u.Status) {
			return t, badTransition("task %d cannot move from %s to %s", taskNumber, t.Status, *u.Status)
		}
		t.Status = *u.Status
		statusChanged = true
	}
	if !contentChanged && !statusChanged {
		return t, tx.Commit()
	}

	now := e.stamp()
	t.UpdatedAt = now
	if contentChanged {
		t.Revision++
	}
	if statusChanged {
		switch t.Status {
		case domain.TaskInProgress:
			if t.StartedAt == nil {
				t.StartedAt = &now
			}
		case domain.TaskCompleted:
			t.CompletedAt = &now
		}
	}
	if err := e.Repo.SaveTask(ctx, tx, t); err != nil {
		return t, err
	}
	evtType := "edited"
	if statusChanged {
		evtType = "status_changed"
	}
	if err := e.events().Task(ctx, tx, t, evtType, from); err != nil {
		return t, err
	}
	return t, tx.Commit()
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
