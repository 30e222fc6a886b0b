// Package agents implements the pipeline stages. Each agent is a
// pipeline.Stage that decodes its input artifacts, does its work (usually
// one or more LLM calls), and emits schema-validated output artifacts.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/matching"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/schemas"
	"github.com/jonathan/job-tailor/internal/types"
)

// DefaultStages returns the full stage sequence in execution order.
func DefaultStages(client llm.Client) []pipeline.Stage {
	return []pipeline.Stage{
		NewParseJD(client),
		NewResearchCompany(client),
		NewMatchRequirements(matching.NewLLMSimilarity(client)),
		NewTailorResume(client),
		NewWriteCoverLetter(client),
		NewFactCheck(client),
		NewPrune(client),
	}
}

// completeDocument runs one JSON completion and validates the response
// against the named schema before returning it.
func completeDocument(ctx context.Context, client llm.Client, prompt string, tier llm.ModelTier, schemaName string) (json.RawMessage, error) {
	raw, err := client.CompleteJSON(ctx, prompt, tier)
	if err != nil {
		return nil, err
	}

	doc := json.RawMessage(strings.TrimSpace(raw))
	if err := schemas.Validate(schemaName, doc); err != nil {
		return nil, fmt.Errorf("model returned an invalid %s document: %w", schemaName, err)
	}
	return doc, nil
}

// requirementsBlock renders requirements as a compact list for prompts.
func requirementsBlock(reqs []types.JobRequirement) string {
	var sb strings.Builder
	for _, req := range reqs {
		fmt.Fprintf(&sb, "- [%s] (%s) %s\n", req.ID, req.Category, req.Text)
	}
	return sb.String()
}

// matchesBlock renders match results with their evidence for prompts.
func matchesBlock(results []types.MatchResult, entries []types.ExperienceEntry) string {
	byID := make(map[string]types.ExperienceEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	var sb strings.Builder
	for _, result := range results {
		if result.EntryID == "" {
			fmt.Fprintf(&sb, "- %s: GAP (%.0f) %s\n", result.RequirementID, result.Score, result.Notes)
			continue
		}
		where := result.EntryID
		if entry, ok := byID[result.EntryID]; ok {
			where = entry.Position
			if entry.Company != "" {
				where += " at " + entry.Company
			}
		}
		fmt.Fprintf(&sb, "- %s: %s (%.0f) via %s\n", result.RequirementID, result.Bucket, result.Score, where)
	}
	return sb.String()
}

// marshalArtifact wraps marshaling failures with the artifact key; these
// indicate a programming error rather than bad model output.
func marshalArtifact(key string, v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s artifact: %w", key, err)
	}
	return data, nil
}
