// Package pipeline orchestrates the tailoring stages: an ordered registry of
// agents with declared artifact dependencies, and a runner that executes
// them with per-stage timeouts, bounded retries, and persisted state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-tailor/internal/config"
)

// Artifact keys seeded by the caller before any stage runs.
const (
	KeyJobPosting        = "job_posting"
	KeyMasterResume      = "master_resume"
	KeyExperienceEntries = "experience_entries"
)

// Artifact keys produced by stages.
const (
	KeyParsedJob       = "parsed_job"
	KeyCompanyProfile  = "company_profile"
	KeyMatchResults    = "match_results"
	KeyTailoredResume  = "tailored_resume"
	KeyCoverLetter     = "cover_letter"
	KeyFactCheckReport = "fact_check_report"
	KeyPrunedResume    = "pruned_resume"
)

// Outputs maps artifact keys to the JSON documents a stage produced.
type Outputs map[string]json.RawMessage

// Stage is one unit of pipeline work. Implementations read their declared
// input artifacts from the StageContext and return their declared outputs.
type Stage interface {
	// Name is the stage's registry identifier, unique within a pipeline.
	Name() string

	// Inputs lists artifact keys that must exist before the stage runs.
	Inputs() []string

	// OptionalInputs lists artifact keys the stage uses when present but
	// can run without.
	OptionalInputs() []string

	// Outputs lists artifact keys the stage produces on success.
	Outputs() []string

	// Optional stages may fail without aborting the run.
	Optional() bool

	Run(ctx context.Context, sc *StageContext) (Outputs, error)
}

// StageContext gives a running stage read-only access to the frozen run
// configuration and the artifacts accumulated so far.
type StageContext struct {
	Config    *config.Config
	artifacts map[string]json.RawMessage
}

// NewStageContext builds a context over the given artifact set. The map is
// not copied; the runner owns it and never mutates it mid-stage.
func NewStageContext(cfg *config.Config, artifacts map[string]json.RawMessage) *StageContext {
	return &StageContext{Config: cfg, artifacts: artifacts}
}

// Artifact returns the raw artifact stored under key.
func (sc *StageContext) Artifact(key string) (json.RawMessage, bool) {
	v, ok := sc.artifacts[key]
	return v, ok
}

// Decode unmarshals the artifact stored under key into out. Missing
// artifacts are an error; stages only Decode keys they declared as inputs.
func (sc *StageContext) Decode(key string, out any) error {
	raw, ok := sc.artifacts[key]
	if !ok {
		return fmt.Errorf("artifact %q not available", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("artifact %q is malformed: %w", key, err)
	}
	return nil
}

// DecodeOptional unmarshals the artifact under key when present and reports
// whether it was.
func (sc *StageContext) DecodeOptional(key string, out any) (bool, error) {
	if _, ok := sc.artifacts[key]; !ok {
		return false, nil
	}
	return true, sc.Decode(key, out)
}
