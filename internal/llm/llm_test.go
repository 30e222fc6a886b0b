package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestConfig_GetModel_FallbackChain(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierLite: "lite-model"},
	}

	// Advanced not configured: falls through standard to lite.
	assert.Equal(t, "lite-model", cfg.GetModel(TierAdvanced))

	cfg.Models[TierStandard] = "standard-model"
	assert.Equal(t, "standard-model", cfg.GetModel(TierAdvanced))
	assert.Equal(t, "lite-model", cfg.GetModel(TierLite))

	empty := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Empty(t, empty.GetModel(TierStandard))
}

func TestClassifyGeminiError(t *testing.T) {
	rateLimited := classifyGeminiError(&googleapi.Error{Code: 429})
	var rl *RateLimitedError
	assert.ErrorAs(t, rateLimited, &rl)
	assert.True(t, IsTransient(rateLimited))

	serverErr := classifyGeminiError(&googleapi.Error{Code: 503})
	var pe *ProviderError
	assert.ErrorAs(t, serverErr, &pe)
	assert.True(t, pe.Retryable)
	assert.True(t, IsTransient(serverErr))

	badRequest := classifyGeminiError(&googleapi.Error{Code: 400})
	assert.ErrorAs(t, badRequest, &pe)
	assert.False(t, pe.Retryable)
	assert.False(t, IsTransient(badRequest))

	network := classifyGeminiError(errors.New("connection reset"))
	assert.True(t, IsTransient(network))
}

func TestIsTransient_PlainError(t *testing.T) {
	assert.False(t, IsTransient(errors.New("some other error")))
}
