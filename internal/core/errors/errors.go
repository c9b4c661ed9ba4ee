// Package errors provides centralized error definitions for the application.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Provider errors.
var (
	// ErrNotConfigured indicates no LLM provider credentials were supplied.
	// Callers should skip network layers and go straight to extractive.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrEmptyResponse indicates the provider returned no usable content.
	ErrEmptyResponse = errors.New("empty response")
)

// Parsing errors.
var (
	// ErrNoResultsExtracted indicates the repair chain recovered nothing from a batch response.
	ErrNoResultsExtracted = errors.New("failed to extract any results from response")
)

// Cache errors.
var (
	// ErrCacheNotFound indicates a cache entry was not found or has expired.
	ErrCacheNotFound = errors.New("cache entry not found")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
