package llm

import "time"

// Error message templates
const (
	errRateLimiter          = "rate limiter error: %w"
	errOpenAIChatCompletion = "openai chat completion error: %w"
)

// Circuit breaker defaults
const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

// Numeric constants
const (
	rateLimiterBurst   = 5
	defaultTemperature = 0.3
)

// Mock API key sentinel
const (
	llmAPIKeyMock = "mock"
)

// Log key strings
const (
	logKeyModel     = "model"
	logKeyMaxTokens = "max_tokens"
)
