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

// FactCheck audits the generated documents against the master resume and
// flags claims the source material does not support.
type FactCheck struct {
	client llm.Client
}

// NewFactCheck returns the fact checking stage.
func NewFactCheck(client llm.Client) *FactCheck {
	return &FactCheck{client: client}
}

func (a *FactCheck) Name() string { return "fact_check" }
func (a *FactCheck) Inputs() []string {
	return []string{pipeline.KeyMasterResume, pipeline.KeyTailoredResume}
}
func (a *FactCheck) OptionalInputs() []string { return []string{pipeline.KeyCoverLetter} }
func (a *FactCheck) Outputs() []string        { return []string{pipeline.KeyFactCheckReport} }
func (a *FactCheck) Optional() bool           { return true }

func (a *FactCheck) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
	var master types.MasterResume
	if err := sc.Decode(pipeline.KeyMasterResume, &master); err != nil {
		return nil, err
	}
	var tailored types.TailoredResume
	if err := sc.Decode(pipeline.KeyTailoredResume, &tailored); err != nil {
		return nil, err
	}

	letterBlock := "(no cover letter was generated)"
	var letter types.CoverLetter
	if ok, err := sc.DecodeOptional(pipeline.KeyCoverLetter, &letter); err != nil {
		return nil, err
	} else if ok {
		letterBlock = letter.Markdown
	}

	prompt := prompts.Format(prompts.MustGet("review.json", "fact-check"), map[string]string{
		"Resume":         master.RawText,
		"TailoredResume": tailored.Markdown,
		"CoverLetter":    letterBlock,
	})

	doc, err := completeDocument(ctx, a.client, prompt, llm.TierStandard, "fact_check_report")
	if err != nil {
		return nil, err
	}

	var report types.FactCheckReport
	if err := json.Unmarshal(doc, &report); err != nil {
		return nil, fmt.Errorf("failed to decode fact check report: %w", err)
	}

	artifact, err := marshalArtifact(pipeline.KeyFactCheckReport, report)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyFactCheckReport: artifact}, nil
}
