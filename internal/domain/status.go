package domain

import "slices"

type OrchestrationStatus string

const (
	OrchestrationPlanning  OrchestrationStatus = "planning"
	OrchestrationExecuting OrchestrationStatus = "executing"
	OrchestrationReviewing OrchestrationStatus = "reviewing"
	OrchestrationComplete  OrchestrationStatus = "complete"
	OrchestrationBlocked   OrchestrationStatus = "blocked"
)

func (s OrchestrationStatus) Valid() bool {
	switch s {
	case OrchestrationPlanning, OrchestrationExecuting, OrchestrationReviewing, OrchestrationComplete, OrchestrationBlocked:
		return true
	}
	return false
}

type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhasePlanning  PhaseStatus = "planning"
	PhaseExecuting PhaseStatus = "executing"
	PhaseReviewing PhaseStatus = "reviewing"
	PhaseComplete  PhaseStatus = "complete"
	PhaseBlocked   PhaseStatus = "blocked"
	PhaseFailed    PhaseStatus = "failed"
)

func (s PhaseStatus) Valid() bool {
	switch s {
	case PhasePending, PhasePlanning, PhaseExecuting, PhaseReviewing, PhaseComplete, PhaseBlocked, PhaseFailed:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskBlocked:
		return true
	}
	return false
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskBlocked},
	TaskInProgress: {TaskCompleted, TaskBlocked, TaskPending},
	TaskBlocked:    {TaskPending, TaskInProgress},
	TaskCompleted:  {},
}

// CanTransition reports whether a task may move from s to next.
// Staying in the same status is always allowed.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if s == next {
		return true
	}
	return slices.Contains(taskTransitions[s], next)
}

type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionClaimed   ActionStatus = "claimed"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

func (s ActionStatus) Terminal() bool {
	return s == ActionCompleted || s == ActionFailed
}

type ReviewState string

const (
	ReviewOpen             ReviewState = "open"
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
	ReviewSuperseded       ReviewState = "superseded"
)

func (s ReviewState) Valid() bool {
	return s == ReviewOpen || s.Terminal()
}

func (s ReviewState) Terminal() bool {
	switch s {
	case ReviewApproved, ReviewChangesRequested, ReviewSuperseded:
		return true
	}
	return false
}

type CheckKind string

const (
	CheckCLI     CheckKind = "cli"
	CheckProject CheckKind = "project"
)

func (k CheckKind) Valid() bool {
	return k == CheckCLI || k == CheckProject
}

type CheckStatus string

const (
	CheckRunning CheckStatus = "running"
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
)

func (s CheckStatus) Valid() bool {
	return s == CheckRunning || s.Terminal()
}

func (s CheckStatus) Terminal() bool {
	return s == CheckPassed || s == CheckFailed
}

type GateID string

const (
	GatePlan     GateID = "plan"
	GateReview   GateID = "review"
	GateFinalize GateID = "finalize"
)

// GateOrder lists gates in pipeline order.
var GateOrder = []GateID{GatePlan, GateReview, GateFinalize}

func (g GateID) Valid() bool {
	return slices.Contains(GateOrder, g)
}

type GateStatus string

const (
	GatePending  GateStatus = "pending"
	GateBlocked  GateStatus = "blocked"
	GateApproved GateStatus = "approved"
)

func (s GateStatus) Valid() bool {
	return s == GatePending || s.Decided()
}

// Decided reports whether the status carries a decision timestamp.
func (s GateStatus) Decided() bool {
	return s == GateApproved || s == GateBlocked
}

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

type TargetType string

const (
	TargetAgent TargetType = "agent"
	TargetAdhoc TargetType = "adhoc"
)

type TargetKind string

const (
	TargetDesign TargetKind = "design"
	TargetTicket TargetKind = "ticket"
)

type AuthorType string

const (
	AuthorHuman AuthorType = "human"
	AuthorAgent AuthorType = "agent"
)

func (a AuthorType) Valid() bool {
	return a == AuthorHuman || a == AuthorAgent
}

// ClaimReason explains a failed claim.
type ClaimReason string

const (
	ClaimNotFound       ClaimReason = "not_found"
	ClaimAlreadyClaimed ClaimReason = "already_claimed"
)

type ClaimResult struct {
	Success bool        `json:"success"`
	Reason  ClaimReason `json:"reason,omitempty" enum:"not_found,already_claimed"`
}
