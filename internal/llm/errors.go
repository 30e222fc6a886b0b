package llm

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"
)

// RateLimitedError indicates the provider rejected a request for quota
// reasons. It is transient: the orchestrator retries it with backoff.
type RateLimitedError struct {
	Provider   Provider
	RetryAfter time.Duration
	Cause      error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Cause)
}

func (e *RateLimitedError) Unwrap() error {
	return e.Cause
}

// ProviderError wraps a provider call failure. Retryable marks transient
// server-side faults; non-retryable errors escalate immediately.
type ProviderError struct {
	Provider  Provider
	Message   string
	Retryable bool
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s provider error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether an error should be retried by the stage retry
// policy: rate limits and retryable provider faults qualify.
func IsTransient(err error) bool {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// classifyGeminiError maps a raw Gemini API error to the taxonomy.
func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return &RateLimitedError{Provider: ProviderGemini, RetryAfter: defaultRetryAfter, Cause: err}
		case apiErr.Code >= 500:
			return &ProviderError{Provider: ProviderGemini, Message: "server error", Retryable: true, Cause: err}
		default:
			return &ProviderError{Provider: ProviderGemini, Message: "request rejected", Retryable: false, Cause: err}
		}
	}
	// Network-level failures without an API status are worth one more try.
	return &ProviderError{Provider: ProviderGemini, Message: "call failed", Retryable: true, Cause: err}
}

// defaultRetryAfter is used when the provider does not report a retry delay.
const defaultRetryAfter = 10 * time.Second
