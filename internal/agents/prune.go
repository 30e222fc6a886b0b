package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/prompts"
	"github.com/jonathan/job-tailor/internal/types"
)

// Prune tightens the tailored resume: weak and gap material is trimmed, and
// anything the fact check flagged is rewritten or removed.
type Prune struct {
	client llm.Client
}

// NewPrune returns the pruning stage.
func NewPrune(client llm.Client) *Prune {
	return &Prune{client: client}
}

func (a *Prune) Name() string { return "prune" }
func (a *Prune) Inputs() []string {
	return []string{pipeline.KeyParsedJob, pipeline.KeyTailoredResume, pipeline.KeyMatchResults, pipeline.KeyExperienceEntries}
}
func (a *Prune) OptionalInputs() []string { return []string{pipeline.KeyFactCheckReport} }
func (a *Prune) Outputs() []string        { return []string{pipeline.KeyPrunedResume} }
func (a *Prune) Optional() bool           { return true }

func (a *Prune) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
	var parsed types.ParsedJob
	if err := sc.Decode(pipeline.KeyParsedJob, &parsed); err != nil {
		return nil, err
	}
	var tailored types.TailoredResume
	if err := sc.Decode(pipeline.KeyTailoredResume, &tailored); err != nil {
		return nil, err
	}
	var results []types.MatchResult
	if err := sc.Decode(pipeline.KeyMatchResults, &results); err != nil {
		return nil, err
	}
	var entries []types.ExperienceEntry
	if err := sc.Decode(pipeline.KeyExperienceEntries, &entries); err != nil {
		return nil, err
	}

	findingsBlock := "(no fact check findings)"
	var report types.FactCheckReport
	if ok, err := sc.DecodeOptional(pipeline.KeyFactCheckReport, &report); err != nil {
		return nil, err
	} else if ok && len(report.Flagged()) > 0 {
		findingsBlock = renderFindings(report.Flagged())
	}

	prompt := prompts.Format(prompts.MustGet("review.json", "prune"), map[string]string{
		"RoleTitle":      parsed.RoleTitle,
		"TailoredResume": tailored.Markdown,
		"Matches":        matchesBlock(results, entries),
		"Findings":       findingsBlock,
	})

	doc, err := completeDocument(ctx, a.client, prompt, llm.TierStandard, "pruned_resume")
	if err != nil {
		return nil, err
	}

	var pruned types.PrunedResume
	if err := json.Unmarshal(doc, &pruned); err != nil {
		return nil, fmt.Errorf("failed to decode pruned resume: %w", err)
	}

	artifact, err := marshalArtifact(pipeline.KeyPrunedResume, pruned)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyPrunedResume: artifact}, nil
}

func renderFindings(findings []types.FactFinding) string {
	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return fmt.Sprintf("%d flagged claims", len(findings))
	}
	return string(data)
}
