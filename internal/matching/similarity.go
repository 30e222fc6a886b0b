package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/prompts"
)

// Similarity scores how relevant an experience entry's text is to a
// requirement, in [0,100]. The matcher treats it as a pure function of its
// inputs; tests stub it with deterministic implementations.
type Similarity interface {
	Score(ctx context.Context, requirementText, entryText string) (float64, error)
}

// SimilarityFunc adapts a plain function to the Similarity interface.
type SimilarityFunc func(ctx context.Context, requirementText, entryText string) (float64, error)

// Score implements Similarity.
func (f SimilarityFunc) Score(ctx context.Context, requirementText, entryText string) (float64, error) {
	return f(ctx, requirementText, entryText)
}

// LLMSimilarity scores achievement relevance with a lite-tier model call.
type LLMSimilarity struct {
	Client llm.Client
}

// NewLLMSimilarity returns a Similarity backed by the given LLM client.
func NewLLMSimilarity(client llm.Client) *LLMSimilarity {
	return &LLMSimilarity{Client: client}
}

type similarityResponse struct {
	Score float64 `json:"score"`
}

// Score implements Similarity via a single JSON completion.
func (s *LLMSimilarity) Score(ctx context.Context, requirementText, entryText string) (float64, error) {
	prompt := prompts.Format(prompts.MustGet("matching.json", "achievement-relevance"), map[string]string{
		"Requirement": requirementText,
		"Experience":  entryText,
	})

	raw, err := s.Client.CompleteJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return 0, err
	}

	var resp similarityResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return 0, fmt.Errorf("failed to parse similarity response: %w", err)
	}

	return clampScore(resp.Score), nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
