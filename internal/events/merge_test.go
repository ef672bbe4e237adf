package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"foreman/internal/domain"
)

func entries(kind string, ats ...string) []domain.TimelineEntry {
	var out []domain.TimelineEntry
	for _, at := range ats {
		out = append(out, domain.TimelineEntry{At: at, Kind: kind})
	}
	return out
}

func TestMergeInterleaves(t *testing.T) {
	a := entries("event", "2024-01-01T00:00:01.000Z", "2024-01-01T00:00:04.000Z")
	b := entries("task", "2024-01-01T00:00:02.000Z", "2024-01-01T00:00:03.000Z", "2024-01-01T00:00:05.000Z")
	got := Merge(0, a, b)
	var kinds []string
	for _, e := range got {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{"event", "task", "task", "event", "task"}, kinds)
}

func TestMergeLimitAndTies(t *testing.T) {
	a := entries("event", "2024-01-01T00:00:01.000Z")
	b := entries("gate", "2024-01-01T00:00:01.000Z")
	got := Merge(1, a, b)
	assert.Len(t, got, 1)
	assert.Equal(t, "event", got[0].Kind)
	assert.Empty(t, Merge(10))
}

func TestFromGatesSkipsUndecided(t *testing.T) {
	at := "2024-01-01T00:00:01.000Z"
	who := "alice"
	got := FromGates([]domain.ReviewGate{
		{ID: "g1", GateID: domain.GatePlan, Status: domain.GatePending, Owner: "bob"},
		{ID: "g2", GateID: domain.GateReview, Status: domain.GateApproved, Owner: "bob", DecidedBy: &who, DecidedAt: &at},
	})
	assert.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Source)
	assert.Equal(t, "gate review approved", got[0].Summary)
}
