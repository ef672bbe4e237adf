package domain

import "encoding/json"

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RepoPath  string `json:"repo_path"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Orchestration struct {
	ID          string              `json:"id"`
	ProjectID   string              `json:"project_id"`
	FeatureName string              `json:"feature_name"`
	Status      OrchestrationStatus `json:"status" enum:"planning,executing,reviewing,complete,blocked"`
	StartedAt   string              `json:"started_at" format:"date-time"`
	UpdatedAt   string              `json:"updated_at" format:"date-time"`
	CompletedAt *string             `json:"completed_at,omitempty" format:"date-time"`
}

type Phase struct {
	ID              string      `json:"id"`
	OrchestrationID string      `json:"orchestration_id"`
	PhaseNumber     string      `json:"phase_number"`
	Status          PhaseStatus `json:"status" enum:"pending,planning,executing,reviewing,complete,blocked,failed"`
	PlanPath        *string     `json:"plan_path,omitempty"`
	GitRange        *string     `json:"git_range,omitempty"`
	PlanningMins    *float64    `json:"planning_mins,omitempty"`
	ExecutionMins   *float64    `json:"execution_mins,omitempty"`
	ReviewMins      *float64    `json:"review_mins,omitempty"`
	StartedAt       *string     `json:"started_at,omitempty" format:"date-time"`
	CompletedAt     *string     `json:"completed_at,omitempty" format:"date-time"`
	UpdatedAt       string      `json:"updated_at" format:"date-time"`
}

type ExecutionTask struct {
	ID              string     `json:"id"`
	OrchestrationID string     `json:"orchestration_id"`
	PhaseNumber     string     `json:"phase_number"`
	TaskNumber      int        `json:"task_number"`
	Subject         string     `json:"subject"`
	Description     *string    `json:"description,omitempty"`
	Status          TaskStatus `json:"status" enum:"pending,in_progress,completed,blocked"`
	DependsOn       []int      `json:"depends_on"`
	Revision        int        `json:"revision"`
	Model           *string    `json:"model,omitempty"`
	CreatedAt       string     `json:"created_at" format:"date-time"`
	UpdatedAt       string     `json:"updated_at" format:"date-time"`
	StartedAt       *string    `json:"started_at,omitempty" format:"date-time"`
	CompletedAt     *string    `json:"completed_at,omitempty" format:"date-time"`
}

type TaskEvent struct {
	ID              string  `json:"id"`
	OrchestrationID string  `json:"orchestration_id"`
	PhaseNumber     string  `json:"phase_number"`
	TaskNumber      int     `json:"task_number"`
	EventType       string  `json:"event_type"`
	FromStatus      *string `json:"from_status,omitempty"`
	ToStatus        *string `json:"to_status,omitempty"`
	RecordedAt      string  `json:"recorded_at" format:"date-time"`
}

type InboundAction struct {
	ID              string          `json:"id"`
	NodeID          string          `json:"node_id"`
	OrchestrationID string          `json:"orchestration_id"`
	Type            string          `json:"type"`
	Payload         json.RawMessage `json:"payload"`
	Status          ActionStatus    `json:"status" enum:"pending,claimed,completed,failed"`
	Result          json.RawMessage `json:"result,omitempty"`
	CreatedAt       string          `json:"created_at" format:"date-time"`
	ClaimedAt       *string         `json:"claimed_at,omitempty" format:"date-time"`
	CompletedAt     *string         `json:"completed_at,omitempty" format:"date-time"`
}

type Review struct {
	ID              string      `json:"id"`
	OrchestrationID string      `json:"orchestration_id"`
	PhaseNumber     *string     `json:"phase_number,omitempty"`
	ReviewerAgent   string      `json:"reviewer_agent"`
	State           ReviewState `json:"state" enum:"open,approved,changes_requested,superseded"`
	StartedAt       string      `json:"started_at" format:"date-time"`
	CompletedAt     *string     `json:"completed_at,omitempty" format:"date-time"`
}

type ReviewCheck struct {
	ID              string      `json:"id"`
	ReviewID        string      `json:"review_id"`
	OrchestrationID string      `json:"orchestration_id"`
	Name            string      `json:"name"`
	Kind            CheckKind   `json:"kind" enum:"cli,project"`
	Command         *string     `json:"command,omitempty"`
	Status          CheckStatus `json:"status" enum:"running,passed,failed"`
	Comment         *string     `json:"comment,omitempty"`
	Output          *string     `json:"output,omitempty"`
	StartedAt       string      `json:"started_at" format:"date-time"`
	CompletedAt     *string     `json:"completed_at,omitempty" format:"date-time"`
	DurationMs      *int64      `json:"duration_ms,omitempty"`
}

type ReviewGate struct {
	ID              string     `json:"id"`
	OrchestrationID string     `json:"orchestration_id"`
	GateID          GateID     `json:"gate_id" enum:"plan,review,finalize"`
	Status          GateStatus `json:"status" enum:"pending,blocked,approved"`
	Owner           string     `json:"owner"`
	DecidedBy       *string    `json:"decided_by,omitempty"`
	DecidedAt       *string    `json:"decided_at,omitempty" format:"date-time"`
	Summary         string     `json:"summary"`
	UpdatedAt       string     `json:"updated_at" format:"date-time"`
}

type SupervisorState struct {
	ID          string          `json:"id"`
	NodeID      string          `json:"node_id"`
	FeatureName string          `json:"feature_name"`
	State       json.RawMessage `json:"state"`
	UpdatedAt   string          `json:"updated_at" format:"date-time"`
}

type OrchestrationEvent struct {
	ID              string  `json:"id"`
	OrchestrationID string  `json:"orchestration_id"`
	PhaseNumber     *string `json:"phase_number,omitempty"`
	EventType       string  `json:"event_type"`
	Source          string  `json:"source"`
	Summary         string  `json:"summary"`
	Detail          *string `json:"detail,omitempty"`
	RecordedAt      string  `json:"recorded_at" format:"date-time"`
}

// TimelineEntry is one row of the merged read view over every event source
// of an orchestration.
type TimelineEntry struct {
	At          string  `json:"at" format:"date-time"`
	Kind        string  `json:"kind" enum:"event,task,check,gate"`
	Source      string  `json:"source"`
	Summary     string  `json:"summary"`
	PhaseNumber *string `json:"phase_number,omitempty"`
	Ref         string  `json:"ref"`
}

type Team struct {
	ID              string `json:"id"`
	OrchestrationID string `json:"orchestration_id"`
	Name            string `json:"name"`
	CreatedAt       string `json:"created_at" format:"date-time"`
}

type TeamMember struct {
	ID              string  `json:"id"`
	TeamID          string  `json:"team_id"`
	OrchestrationID string  `json:"orchestration_id"`
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	CLI             string  `json:"cli"`
	Model           *string `json:"model,omitempty"`
	SessionName     string  `json:"session_name"`
	PaneID          string  `json:"pane_id"`
	CreatedAt       string  `json:"created_at" format:"date-time"`
}

type TerminalSession struct {
	ID             string        `json:"id"`
	Label          string        `json:"label"`
	SessionName    string        `json:"session_name"`
	PaneID         string        `json:"pane_id"`
	CLI            string        `json:"cli"`
	Status         SessionStatus `json:"status" enum:"active,closed"`
	ContextType    *string       `json:"context_type,omitempty"`
	ContextID      *string       `json:"context_id,omitempty"`
	ContextSummary *string       `json:"context_summary,omitempty"`
	CreatedAt      string        `json:"created_at" format:"date-time"`
	ClosedAt       *string       `json:"closed_at,omitempty" format:"date-time"`
}

type TargetContext struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// TerminalTarget is derived on every read and never stored.
type TerminalTarget struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	SessionName string         `json:"session_name"`
	PaneID      string         `json:"pane_id"`
	Type        TargetType     `json:"type" enum:"agent,adhoc"`
	CLI         string         `json:"cli"`
	Context     *TargetContext `json:"context,omitempty"`
}

type Design struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Ticket struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Number      int64  `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type Spec struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type SpecDesign struct {
	SpecID    string `json:"spec_id"`
	DesignID  string `json:"design_id"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type WorkComment struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	TargetType TargetKind `json:"target_type" enum:"design,ticket"`
	TargetID   string     `json:"target_id"`
	AuthorType AuthorType `json:"author_type" enum:"human,agent"`
	AuthorName string     `json:"author_name"`
	Body       string     `json:"body"`
	CreatedAt  string     `json:"created_at" format:"date-time"`
}

type Commit struct {
	ID              string  `json:"id"`
	OrchestrationID string  `json:"orchestration_id"`
	PhaseNumber     *string `json:"phase_number,omitempty"`
	SHA             string  `json:"sha"`
	Message         string  `json:"message"`
	Author          string  `json:"author"`
	CommittedAt     string  `json:"committed_at" format:"date-time"`
}

type Plan struct {
	ID              string  `json:"id"`
	OrchestrationID string  `json:"orchestration_id"`
	PhaseNumber     *string `json:"phase_number,omitempty"`
	Path            string  `json:"path"`
	Content         string  `json:"content,omitempty"`
	CreatedAt       string  `json:"created_at" format:"date-time"`
}
