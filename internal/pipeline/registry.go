package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-tailor/internal/config"
)

// DependencyError reports an unsatisfiable stage dependency detected when
// the registry is built, before any stage runs.
type DependencyError struct {
	Stage   string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s requires artifacts not produced by any earlier stage: %s",
		e.Stage, strings.Join(e.Missing, ", "))
}

// Registry holds the ordered, validated stage sequence for a run.
type Registry struct {
	stages []Stage
}

// EnabledStages drops the stages disabled in the configuration. Build the
// registry from the filtered list so dependency validation sees exactly the
// stages that will run; a consumer of a disabled producer then fails fast
// with a DependencyError instead of at runtime.
func EnabledStages(cfg *config.Config, stages []Stage) []Stage {
	out := make([]Stage, 0, len(stages))
	for _, stage := range stages {
		if sc, ok := cfg.Stages.ForStage(stage.Name()); ok && !sc.Enabled {
			continue
		}
		out = append(out, stage)
	}
	return out
}

// NewRegistry validates that every stage's required inputs are satisfied by
// the seed artifacts or by the outputs of earlier stages, in order. Stages
// disabled by configuration must be excluded by the caller before building
// (see EnabledStages); the registry validates exactly what will run.
func NewRegistry(stages ...Stage) (*Registry, error) {
	available := map[string]bool{
		KeyJobPosting:        true,
		KeyMasterResume:      true,
		KeyExperienceEntries: true,
	}

	seen := make(map[string]bool, len(stages))
	for _, stage := range stages {
		if seen[stage.Name()] {
			return nil, fmt.Errorf("duplicate stage name %q", stage.Name())
		}
		seen[stage.Name()] = true

		var missing []string
		for _, input := range stage.Inputs() {
			if !available[input] {
				missing = append(missing, input)
			}
		}
		if len(missing) > 0 {
			return nil, &DependencyError{Stage: stage.Name(), Missing: missing}
		}

		for _, output := range stage.Outputs() {
			available[output] = true
		}
	}

	return &Registry{stages: stages}, nil
}

// Stages returns the execution order.
func (r *Registry) Stages() []Stage {
	return r.stages
}
