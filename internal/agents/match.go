package agents

import (
	"context"
	"fmt"

	"github.com/jonathan/job-tailor/internal/matching"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/types"
)

// MatchRequirements scores every extracted requirement against the
// candidate's experience entries with the weighted rubric.
type MatchRequirements struct {
	sim matching.Similarity
}

// NewMatchRequirements returns the requirement matching stage.
func NewMatchRequirements(sim matching.Similarity) *MatchRequirements {
	return &MatchRequirements{sim: sim}
}

func (a *MatchRequirements) Name() string { return "match_requirements" }
func (a *MatchRequirements) Inputs() []string {
	return []string{pipeline.KeyParsedJob, pipeline.KeyExperienceEntries}
}
func (a *MatchRequirements) OptionalInputs() []string { return nil }
func (a *MatchRequirements) Outputs() []string        { return []string{pipeline.KeyMatchResults} }
func (a *MatchRequirements) Optional() bool           { return false }

func (a *MatchRequirements) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
	var parsed types.ParsedJob
	if err := sc.Decode(pipeline.KeyParsedJob, &parsed); err != nil {
		return nil, err
	}
	var entries []types.ExperienceEntry
	if err := sc.Decode(pipeline.KeyExperienceEntries, &entries); err != nil {
		return nil, err
	}

	matcher := matching.NewMatcher(sc.Config.Match, a.sim)
	results, err := matcher.Match(ctx, parsed.Requirements, entries)
	if err != nil {
		return nil, fmt.Errorf("requirement matching failed: %w", err)
	}

	artifact, err := marshalArtifact(pipeline.KeyMatchResults, results)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyMatchResults: artifact}, nil
}
