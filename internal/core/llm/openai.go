package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/contentpipe/contentpipe/internal/core/errors"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/platform/observability"
)

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientCfg.BaseURL = cfg.LLMBaseURL
	}

	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClientWithConfig(clientCfg),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), rateLimiterBurst),
	}
}

func (c *openaiClient) Configured() bool {
	return true
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", errors.ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (c *openaiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.LLMModel
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}

	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)

	observability.LLMRequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()
		observability.LLMRequests.WithLabelValues(model, observability.StatusError).Inc()

		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	c.recordSuccess()
	observability.LLMRequests.WithLabelValues(model, observability.StatusSuccess).Inc()

	if len(resp.Choices) == 0 {
		return "", errors.ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content

	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		c.logger.Warn().
			Str(logKeyModel, model).
			Int(logKeyMaxTokens, req.MaxTokens).
			Msg("LLM output truncated due to max_tokens limit")
	}

	return content, nil
}
