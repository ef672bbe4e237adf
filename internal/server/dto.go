package server

import (
	"encoding/json"

	"foreman/internal/domain"
)

// out wraps a response body for huma.
type out[T any] struct {
	Body T
}

func reply[T any](v T) *out[T] { return &out[T]{Body: v} }

type IDResponse struct {
	ID string `json:"id"`
}

type IDsResponse struct {
	IDs []string `json:"ids"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type CreatedResponse struct {
	Created bool `json:"created"`
}

// rawJSON turns a decoded free-form body field back into JSON text. A nil
// value stays empty so the engine can apply its own default.
func rawJSON(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Request payloads

type CreateProjectRequest struct {
	Name     string `json:"name"`
	RepoPath string `json:"repo_path"`
}

type ResolveProjectRequest struct {
	Name     string `json:"name,omitempty"`
	RepoPath string `json:"repo_path"`
}

type CreateOrchestrationRequest struct {
	FeatureName string `json:"feature_name"`
}

type SetOrchestrationStatusRequest struct {
	Status domain.OrchestrationStatus `json:"status" enum:"planning,executing,reviewing,complete,blocked"`
}

type UpsertPhaseRequest struct {
	Status        domain.PhaseStatus `json:"status" enum:"pending,planning,executing,reviewing,complete,blocked,failed"`
	PlanPath      *string            `json:"plan_path,omitempty"`
	GitRange      *string            `json:"git_range,omitempty"`
	PlanningMins  *float64           `json:"planning_mins,omitempty"`
	ExecutionMins *float64           `json:"execution_mins,omitempty"`
	ReviewMins    *float64           `json:"review_mins,omitempty"`
	StartedAt     *string            `json:"started_at,omitempty"`
	CompletedAt   *string            `json:"completed_at,omitempty"`
}

type SeedTasksRequest struct {
	Tasks []domain.TaskSeed `json:"tasks" minItems:"1"`
}

type UpdateTaskRequest struct {
	Subject          *string            `json:"subject,omitempty"`
	Description      *string            `json:"description,omitempty"`
	Model            *string            `json:"model,omitempty"`
	Status           *domain.TaskStatus `json:"status,omitempty" enum:"pending,in_progress,completed,blocked"`
	ExpectedRevision *int               `json:"expected_revision,omitempty"`
}

type SubmitActionRequest struct {
	NodeID          string `json:"node_id"`
	OrchestrationID string `json:"orchestration_id"`
	Type            string `json:"type"`
	Payload         any    `json:"payload,omitempty"`
}

type CompleteActionRequest struct {
	Success bool `json:"success"`
	Result  any  `json:"result,omitempty"`
}

type RequeueRequest struct {
	// OlderThan is a Go duration such as "10m". Empty uses actions.claim_ttl.
	OlderThan string `json:"older_than,omitempty"`
}

type CreateReviewRequest struct {
	PhaseNumber   *string `json:"phase_number,omitempty"`
	ReviewerAgent string  `json:"reviewer_agent"`
}

type CompleteReviewRequest struct {
	State domain.ReviewState `json:"state" enum:"approved,changes_requested,superseded"`
}

type StartCheckRequest struct {
	OrchestrationID string           `json:"orchestration_id,omitempty"`
	Name            string           `json:"name"`
	Kind            domain.CheckKind `json:"kind" enum:"cli,project"`
	Command         *string          `json:"command,omitempty"`
}

type CompleteCheckRequest struct {
	Status  domain.CheckStatus `json:"status" enum:"passed,failed"`
	Comment *string            `json:"comment,omitempty"`
	Output  *string            `json:"output,omitempty"`
}

type UpsertGateRequest struct {
	Status    domain.GateStatus `json:"status" enum:"pending,blocked,approved"`
	Owner     string            `json:"owner"`
	DecidedBy *string           `json:"decided_by,omitempty"`
	Summary   string            `json:"summary,omitempty"`
}

type UpsertSupervisorRequest struct {
	NodeID    string `json:"node_id"`
	State     any    `json:"state"`
	UpdatedAt string `json:"updated_at,omitempty" format:"date-time"`
}

type RecordEventRequest struct {
	PhaseNumber *string `json:"phase_number,omitempty"`
	EventType   string  `json:"event_type"`
	Source      string  `json:"source"`
	Summary     string  `json:"summary,omitempty"`
	Detail      *string `json:"detail,omitempty"`
	RecordedAt  string  `json:"recorded_at" format:"date-time"`
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	Name        string  `json:"name"`
	Role        string  `json:"role,omitempty"`
	CLI         string  `json:"cli"`
	Model       *string `json:"model,omitempty"`
	SessionName string  `json:"session_name,omitempty"`
	PaneID      string  `json:"pane_id,omitempty"`
}

type OpenSessionRequest struct {
	Label          string  `json:"label,omitempty"`
	SessionName    string  `json:"session_name"`
	PaneID         string  `json:"pane_id,omitempty"`
	CLI            string  `json:"cli"`
	StartDir       string  `json:"start_dir,omitempty"`
	ContextType    *string `json:"context_type,omitempty"`
	ContextID      *string `json:"context_id,omitempty"`
	ContextSummary *string `json:"context_summary,omitempty"`
}

type CreateDesignRequest struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type CreateSpecRequest struct {
	Title string `json:"title"`
}

type AddCommentRequest struct {
	TargetType domain.TargetKind `json:"target_type" enum:"design,ticket"`
	TargetID   string            `json:"target_id"`
	AuthorType domain.AuthorType `json:"author_type" enum:"human,agent"`
	AuthorName string            `json:"author_name"`
	Body       string            `json:"body"`
}

type RecordCommitRequest struct {
	PhaseNumber *string `json:"phase_number,omitempty"`
	SHA         string  `json:"sha"`
	Message     string  `json:"message,omitempty"`
	Author      string  `json:"author,omitempty"`
	CommittedAt string  `json:"committed_at,omitempty" format:"date-time"`
}

type SavePlanRequest struct {
	PhaseNumber *string `json:"phase_number,omitempty"`
	Path        string  `json:"path"`
	Content     string  `json:"content"`
}
