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

// WriteCoverLetter drafts a cover letter grounded in the tailored resume,
// the match analysis, and the company profile when research succeeded.
type WriteCoverLetter struct {
	client llm.Client
}

// NewWriteCoverLetter returns the cover letter stage.
func NewWriteCoverLetter(client llm.Client) *WriteCoverLetter {
	return &WriteCoverLetter{client: client}
}

func (a *WriteCoverLetter) Name() string { return "write_cover_letter" }
func (a *WriteCoverLetter) Inputs() []string {
	return []string{pipeline.KeyParsedJob, pipeline.KeyTailoredResume, pipeline.KeyMatchResults, pipeline.KeyExperienceEntries}
}
func (a *WriteCoverLetter) OptionalInputs() []string {
	return []string{pipeline.KeyCompanyProfile}
}
func (a *WriteCoverLetter) Outputs() []string { return []string{pipeline.KeyCoverLetter} }
func (a *WriteCoverLetter) Optional() bool    { return true }

func (a *WriteCoverLetter) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
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

	profileBlock := "(no company research available)"
	var profile types.CompanyProfile
	if ok, err := sc.DecodeOptional(pipeline.KeyCompanyProfile, &profile); err != nil {
		return nil, err
	} else if ok {
		profileBlock = renderProfile(profile)
	}

	prompt := prompts.Format(prompts.MustGet("tailoring.json", "cover-letter"), map[string]string{
		"RoleTitle":      parsed.RoleTitle,
		"Company":        parsed.Company,
		"CompanyProfile": profileBlock,
		"Matches":        matchesBlock(strongMatches(results), entries),
		"Resume":         tailored.Markdown,
	})

	doc, err := completeDocument(ctx, a.client, prompt, llm.TierAdvanced, "cover_letter")
	if err != nil {
		return nil, err
	}

	var letter types.CoverLetter
	if err := json.Unmarshal(doc, &letter); err != nil {
		return nil, fmt.Errorf("failed to decode cover letter: %w", err)
	}

	artifact, err := marshalArtifact(pipeline.KeyCoverLetter, letter)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyCoverLetter: artifact}, nil
}

// strongMatches keeps the strong and moderate results, which are the ones
// worth citing in a letter.
func strongMatches(results []types.MatchResult) []types.MatchResult {
	var out []types.MatchResult
	for _, r := range results {
		if r.Bucket == types.BucketStrong || r.Bucket == types.BucketModerate {
			out = append(out, r)
		}
	}
	return out
}

func renderProfile(p types.CompanyProfile) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return p.Summary
	}
	return string(data)
}
