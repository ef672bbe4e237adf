package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

func (r Repo) InsertEvent(ctx context.Context, tx *sql.Tx, ev domain.OrchestrationEvent) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO orchestration_events(id,orchestration_id,phase_number,event_type,source,summary,detail,recorded_at) VALUES (?,?,?,?,?,?,?,?)`,
		ev.ID, ev.OrchestrationID, nullableStringPtr(ev.PhaseNumber), ev.EventType, ev.Source, ev.Summary, nullableStringPtr(ev.Detail), ev.RecordedAt)
	return err
}

// ListEvents returns events strictly after since, oldest first. Ties on
// recorded_at fall back to insertion order.
func (r Repo) ListEvents(ctx context.Context, orchestrationID, since string, limit int) ([]domain.OrchestrationEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,orchestration_id,phase_number,event_type,source,summary,detail,recorded_at
FROM orchestration_events WHERE orchestration_id=? AND recorded_at > ? ORDER BY recorded_at, seq LIMIT ?`, orchestrationID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.OrchestrationEvent
	for rows.Next() {
		var (
			ev            domain.OrchestrationEvent
			phase, detail sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.OrchestrationID, &phase, &ev.EventType, &ev.Source, &ev.Summary, &detail, &ev.RecordedAt); err != nil {
			return nil, err
		}
		ev.PhaseNumber = strPtr(phase)
		ev.Detail = strPtr(detail)
		res = append(res, ev)
	}
	return res, rows.Err()
}
