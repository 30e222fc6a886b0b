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

// ParseJD extracts a structured job description from raw posting text.
type ParseJD struct {
	client llm.Client
}

// NewParseJD returns the job description parsing stage.
func NewParseJD(client llm.Client) *ParseJD {
	return &ParseJD{client: client}
}

func (a *ParseJD) Name() string             { return "parse_jd" }
func (a *ParseJD) Inputs() []string         { return []string{pipeline.KeyJobPosting} }
func (a *ParseJD) OptionalInputs() []string { return nil }
func (a *ParseJD) Outputs() []string        { return []string{pipeline.KeyParsedJob} }
func (a *ParseJD) Optional() bool           { return false }

// Run parses the posting with a standard-tier model and assigns stable
// requirement IDs in extraction order.
func (a *ParseJD) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
	var posting string
	if err := sc.Decode(pipeline.KeyJobPosting, &posting); err != nil {
		return nil, err
	}

	prompt := prompts.Format(prompts.MustGet("parsing.json", "parse-job"), map[string]string{
		"Posting": posting,
	})

	doc, err := completeDocument(ctx, a.client, prompt, llm.TierStandard, "parsed_job")
	if err != nil {
		return nil, err
	}

	var parsed types.ParsedJob
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed job: %w", err)
	}
	for i := range parsed.Requirements {
		parsed.Requirements[i].ID = fmt.Sprintf("req_%03d", i+1)
	}

	artifact, err := marshalArtifact(pipeline.KeyParsedJob, parsed)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyParsedJob: artifact}, nil
}
