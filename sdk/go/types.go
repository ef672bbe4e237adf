package foremansdk

import "encoding/json"

type Action struct {
	ID              string          `json:"id"`
	NodeID          string          `json:"node_id"`
	OrchestrationID string          `json:"orchestration_id"`
	Type            string          `json:"type"`
	Payload         json.RawMessage `json:"payload"`
	Status          string          `json:"status"`
	Result          json.RawMessage `json:"result,omitempty"`
	CreatedAt       string          `json:"created_at"`
	ClaimedAt       *string         `json:"claimed_at,omitempty"`
	CompletedAt     *string         `json:"completed_at,omitempty"`
}

// ClaimResult reports the outcome of a claim. Reason is "not_found" or
// "already_claimed" when Success is false.
type ClaimResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

type TaskSeed struct {
	TaskNumber  int     `json:"task_number"`
	Subject     string  `json:"subject"`
	Description *string `json:"description,omitempty"`
	DependsOn   []int   `json:"depends_on,omitempty"`
	Model       *string `json:"model,omitempty"`
}

type Task struct {
	ID              string  `json:"id"`
	OrchestrationID string  `json:"orchestration_id"`
	PhaseNumber     string  `json:"phase_number"`
	TaskNumber      int     `json:"task_number"`
	Subject         string  `json:"subject"`
	Description     *string `json:"description,omitempty"`
	Status          string  `json:"status"`
	DependsOn       []int   `json:"depends_on"`
	Revision        int     `json:"revision"`
	Model           *string `json:"model,omitempty"`
	UpdatedAt       string  `json:"updated_at"`
}

// TaskUpdate is a sparse update; nil fields are left alone.
type TaskUpdate struct {
	Subject          *string `json:"subject,omitempty"`
	Description      *string `json:"description,omitempty"`
	Model            *string `json:"model,omitempty"`
	Status           *string `json:"status,omitempty"`
	ExpectedRevision *int    `json:"expected_revision,omitempty"`
}

type Event struct {
	ID              string  `json:"id"`
	OrchestrationID string  `json:"orchestration_id"`
	PhaseNumber     *string `json:"phase_number,omitempty"`
	EventType       string  `json:"event_type"`
	Source          string  `json:"source"`
	Summary         string  `json:"summary"`
	Detail          *string `json:"detail,omitempty"`
	RecordedAt      string  `json:"recorded_at"`
}

type TimelineEntry struct {
	At          string  `json:"at"`
	Kind        string  `json:"kind"`
	Source      string  `json:"source"`
	Summary     string  `json:"summary"`
	PhaseNumber *string `json:"phase_number,omitempty"`
	Ref         string  `json:"ref,omitempty"`
}

type Check struct {
	ID         string  `json:"id"`
	ReviewID   string  `json:"review_id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status"`
	Comment    *string `json:"comment,omitempty"`
	Output     *string `json:"output,omitempty"`
	DurationMs *int64  `json:"duration_ms,omitempty"`
}

type Gate struct {
	ID        string  `json:"id"`
	GateID    string  `json:"gate_id"`
	Status    string  `json:"status"`
	Owner     string  `json:"owner"`
	DecidedBy *string `json:"decided_by,omitempty"`
	DecidedAt *string `json:"decided_at,omitempty"`
	Summary   string  `json:"summary"`
}

type SupervisorState struct {
	ID          string          `json:"id"`
	NodeID      string          `json:"node_id"`
	FeatureName string          `json:"feature_name"`
	State       json.RawMessage `json:"state"`
	UpdatedAt   string          `json:"updated_at"`
}
