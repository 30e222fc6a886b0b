//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"time"
)

// StageStatus is the terminal status of one stage execution.
type StageStatus string

// Stage statuses recorded in workflow state.
const (
	StageSuccess StageStatus = "success"
	StageFailure StageStatus = "failure"
	StageSkipped StageStatus = "skipped"
	StageTimeout StageStatus = "timeout"
)

// RunState is the state of a whole pipeline run.
type RunState string

// Run states of the orchestrator state machine.
const (
	RunPending   RunState = "pending"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
	RunAborted   RunState = "aborted"
)

// StageResult records the outcome of one stage execution. Results are
// append-only; corrections are new entries.
type StageResult struct {
	Stage       string      `json:"stage"`
	Status      StageStatus `json:"status"`
	Attempts    int         `json:"attempts"`
	DurationMS  int64       `json:"duration_ms"`
	Error       string      `json:"error,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at"`
}

// WorkflowState is the accumulated record of a run: ordered stage results,
// the resolved configuration snapshot, and all intermediate artifacts.
// Owned exclusively by the orchestrator for the run's lifetime.
type WorkflowState struct {
	RunID        string                     `json:"run_id"`
	State        RunState                   `json:"state"`
	CurrentStage string                     `json:"current_stage,omitempty"`
	Config       json.RawMessage            `json:"config,omitempty"`
	Results      []StageResult              `json:"results"`
	Artifacts    map[string]json.RawMessage `json:"artifacts"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// ResultFor returns the most recent result for a stage, or nil.
func (w *WorkflowState) ResultFor(stage string) *StageResult {
	for i := len(w.Results) - 1; i >= 0; i-- {
		if w.Results[i].Stage == stage {
			return &w.Results[i]
		}
	}
	return nil
}

// Succeeded reports whether the stage has a recorded success result.
func (w *WorkflowState) Succeeded(stage string) bool {
	r := w.ResultFor(stage)
	return r != nil && r.Status == StageSuccess
}

// DegradedStages returns the names of optional stages that failed or timed
// out during a run that otherwise completed.
func (w *WorkflowState) DegradedStages() []string {
	var out []string
	for _, r := range w.Results {
		if r.Status == StageFailure || r.Status == StageTimeout {
			out = append(out, r.Stage)
		}
	}
	return out
}
