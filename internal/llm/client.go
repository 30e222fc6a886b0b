package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/job-tailor/internal/ratelimit"
)

// Client is the abstraction over LLM providers.
type Client interface {
	// Complete generates text content using the specified model tier
	Complete(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// CompleteJSON generates JSON content using the specified model tier
	CompleteJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the configured provider. The governor is
// shared across all runs talking to the same provider; pass nil to disable
// request budgeting (tests).
func NewClient(ctx context.Context, config *Config, apiKey string, governor *ratelimit.Governor) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey, governor)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client   *genai.Client
	config   *Config
	governor *ratelimit.Governor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, governor *ratelimit.Governor) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:   client,
		config:   config,
		governor: governor,
	}, nil
}

// Complete generates text content using the specified model tier
func (c *GeminiClient) Complete(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	resp, err := c.generate(ctx, prompt, tier, "")
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

// CompleteJSON generates JSON content using the specified model tier
func (c *GeminiClient) CompleteJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	resp, err := c.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (*genai.GenerateContentResponse, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	if c.governor != nil {
		if err := c.governor.Wait(ctx); err != nil {
			return nil, err
		}
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyGeminiError(err)
	}
	return resp, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &ProviderError{Provider: ProviderGemini, Message: "no candidates in response", Retryable: true}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &ProviderError{Provider: ProviderGemini, Message: "no content in response", Retryable: true}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &ProviderError{Provider: ProviderGemini, Message: "no text parts in response", Retryable: true}
	}

	return strings.Join(parts, ""), nil
}
