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

// TailorResume rewrites and reorders the master resume so the strongest
// evidence for the parsed job leads, using the company profile for
// terminology and tone when research succeeded.
type TailorResume struct {
	client llm.Client
}

// NewTailorResume returns the resume tailoring stage.
func NewTailorResume(client llm.Client) *TailorResume {
	return &TailorResume{client: client}
}

func (a *TailorResume) Name() string { return "tailor_resume" }
func (a *TailorResume) Inputs() []string {
	return []string{pipeline.KeyParsedJob, pipeline.KeyMasterResume, pipeline.KeyMatchResults, pipeline.KeyExperienceEntries}
}
func (a *TailorResume) OptionalInputs() []string {
	return []string{pipeline.KeyCompanyProfile}
}
func (a *TailorResume) Outputs() []string        { return []string{pipeline.KeyTailoredResume} }
func (a *TailorResume) Optional() bool           { return false }

func (a *TailorResume) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
	var parsed types.ParsedJob
	if err := sc.Decode(pipeline.KeyParsedJob, &parsed); err != nil {
		return nil, err
	}
	var master types.MasterResume
	if err := sc.Decode(pipeline.KeyMasterResume, &master); err != nil {
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

	prompt := prompts.Format(prompts.MustGet("tailoring.json", "tailor-resume"), map[string]string{
		"RoleTitle":      parsed.RoleTitle,
		"Company":        parsed.Company,
		"CompanyProfile": profileBlock,
		"Requirements":   requirementsBlock(parsed.Requirements),
		"Matches":        matchesBlock(results, entries),
		"Resume":         master.RawText,
	})

	doc, err := completeDocument(ctx, a.client, prompt, llm.TierAdvanced, "tailored_resume")
	if err != nil {
		return nil, err
	}

	// Round-trip through the concrete type so downstream stages never see
	// unexpected extra fields.
	var tailored types.TailoredResume
	if err := json.Unmarshal(doc, &tailored); err != nil {
		return nil, fmt.Errorf("failed to decode tailored resume: %w", err)
	}

	artifact, err := marshalArtifact(pipeline.KeyTailoredResume, tailored)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyTailoredResume: artifact}, nil
}
