// Package llm wraps the chat-completion provider behind a small Client
// interface. The concrete client adds rate limiting and a circuit breaker;
// response content is always returned as untrusted text for the caller to
// parse.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/contentpipe/contentpipe/internal/platform/config"
)

// CompletionRequest describes a single chat-completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
	JSONMode    bool
}

// Client issues chat-completion requests. Implementations must treat the
// returned content as untrusted text that may or may not be valid JSON.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Configured() bool
}

// New creates the LLM client. Without an API key it returns a sentinel
// not-configured client so every call degrades to the extractive path
// instead of failing the pipeline.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == llmAPIKeyMock {
		logger.Warn().Msg("no LLM API key configured, summarization will use the extractive path")
		return NewNotConfigured()
	}

	return NewOpenAI(cfg, logger)
}
