// Package llm provides the LLM provider capability used by pipeline agents.
// Every semantic operation in the system goes through the narrow Client
// contract so that non-determinism stays behind one injectable boundary.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, pairwise similarity scoring
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: extraction, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: tailoring, fact checking, pruning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Supported providers. Only Gemini is implemented today; the constant set
// mirrors the config surface so a second provider slots in without touching
// callers.
const (
	ProviderGemini Provider = "gemini"
)

// Config holds the model configuration for the provider client
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a given tier, falling back down the
// tier chain when a tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
