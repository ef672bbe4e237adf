package events

import (
	"fmt"

	"foreman/internal/domain"
)

// Merge combines timeline streams that are each sorted by At into one
// ascending stream of at most limit entries. On equal timestamps the
// earlier stream wins, so callers pass sources in precedence order.
func Merge(limit int, streams ...[]domain.TimelineEntry) []domain.TimelineEntry {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	if limit <= 0 || limit > total {
		limit = total
	}
	out := make([]domain.TimelineEntry, 0, limit)
	pos := make([]int, len(streams))
	for len(out) < limit {
		best := -1
		for i, s := range streams {
			if pos[i] >= len(s) {
				continue
			}
			if best < 0 || s[pos[i]].At < streams[best][pos[best]].At {
				best = i
			}
		}
		if best < 0 {
			break
		}
		out = append(out, streams[best][pos[best]])
		pos[best]++
	}
	return out
}

func FromEvents(evs []domain.OrchestrationEvent) []domain.TimelineEntry {
	out := make([]domain.TimelineEntry, 0, len(evs))
	for _, ev := range evs {
		out = append(out, domain.TimelineEntry{
			At:          ev.RecordedAt,
			Kind:        "event",
			Source:      ev.Source,
			Summary:     fmt.Sprintf("%s: %s", ev.EventType, ev.Summary),
			PhaseNumber: ev.PhaseNumber,
			Ref:         ev.ID,
		})
	}
	return out
}

func FromTaskEvents(evs []domain.TaskEvent) []domain.TimelineEntry {
	out := make([]domain.TimelineEntry, 0, len(evs))
	for _, ev := range evs {
		phase := ev.PhaseNumber
		summary := fmt.Sprintf("task %d %s", ev.TaskNumber, ev.EventType)
		if ev.FromStatus != nil && ev.ToStatus != nil && *ev.FromStatus != *ev.ToStatus {
			summary = fmt.Sprintf("task %d %s -> %s", ev.TaskNumber, *ev.FromStatus, *ev.ToStatus)
		}
		out = append(out, domain.TimelineEntry{
			At:          ev.RecordedAt,
			Kind:        "task",
			Source:      "tasks",
			Summary:     summary,
			PhaseNumber: &phase,
			Ref:         ev.ID,
		})
	}
	return out
}

func FromChecks(checks []domain.ReviewCheck) []domain.TimelineEntry {
	out := make([]domain.TimelineEntry, 0, len(checks))
	for _, c := range checks {
		if c.CompletedAt == nil {
			continue
		}
		summary := fmt.Sprintf("check %s %s", c.Name, c.Status)
		if c.DurationMs != nil {
			summary = fmt.Sprintf("%s in %dms", summary, *c.DurationMs)
		}
		out = append(out, domain.TimelineEntry{
			At:      *c.CompletedAt,
			Kind:    "check",
			Source:  "review:" + c.ReviewID,
			Summary: summary,
			Ref:     c.ID,
		})
	}
	return out
}

func FromGates(gates []domain.ReviewGate) []domain.TimelineEntry {
	out := make([]domain.TimelineEntry, 0, len(gates))
	for _, g := range gates {
		if g.DecidedAt == nil {
			continue
		}
		by := g.Owner
		if g.DecidedBy != nil {
			by = *g.DecidedBy
		}
		out = append(out, domain.TimelineEntry{
			At:      *g.DecidedAt,
			Kind:    "gate",
			Source:  by,
			Summary: fmt.Sprintf("gate %s %s", g.GateID, g.Status),
			Ref:     g.ID,
		})
	}
	return out
}
