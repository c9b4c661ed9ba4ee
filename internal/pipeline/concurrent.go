package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/errors"
	"github.com/contentpipe/contentpipe/internal/core/llm"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/textutil"
)

const singleCallMaxRetries = 2

// ConcurrentSummarizer is the first fallback: one provider call per
// document, bounded by a counting semaphore. A failing document degrades
// only itself, never its siblings.
type ConcurrentSummarizer struct {
	client         llm.Client
	logger         *zerolog.Logger
	model          string
	maxConcurrency int
	maxBodyRunes   int
	callTimeout    time.Duration
}

func NewConcurrentSummarizer(client llm.Client, cfg *config.Config, logger *zerolog.Logger) *ConcurrentSummarizer {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	maxContentLength := cfg.MaxContentLength
	if maxContentLength <= 0 {
		maxContentLength = defaultMaxContentLength
	}

	callTimeout := cfg.SingleCallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultSingleCallTimeout
	}

	return &ConcurrentSummarizer{
		client:         client,
		logger:         logger,
		model:          cfg.LLMModel,
		maxConcurrency: maxConcurrency,
		maxBodyRunes:   maxContentLength,
		callTimeout:    callTimeout,
	}
}

// SummarizeOne issues a single provider call for one document, with its own
// timeout and a short exponential-backoff retry.
func (s *ConcurrentSummarizer) SummarizeOne(ctx context.Context, doc *domain.Document, style domain.SummaryStyle) (domain.SummaryResult, error) {
	body := textutil.TruncateRunes(doc.Body, s.maxBodyRunes)
	prompt := buildSinglePrompt(doc, body, style)

	operation := func() (domain.SummaryResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		content, err := s.client.Complete(callCtx, llm.CompletionRequest{
			System:    systemPrompt,
			Prompt:    prompt,
			Model:     s.model,
			MaxTokens: singleCallMaxTokens,
			JSONMode:  true,
		})
		if err != nil {
			return domain.SummaryResult{}, err
		}

		return parseSingleResult(content)
	}

	result, err := backoff.RetryWithData(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), singleCallMaxRetries), ctx))
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf(errFmtSingleCall, doc.ID, err)
	}

	return result, nil
}

// SummarizeAll runs SummarizeOne for each document with at most
// maxConcurrency calls in flight. The returned slice is aligned with docs;
// failed documents keep an empty placeholder for the caller's next fallback
// layer, and their errors are returned as soft errors for the caller's
// report.
func (s *ConcurrentSummarizer) SummarizeAll(ctx context.Context, docs []*domain.Document, style domain.SummaryStyle) ([]domain.SummaryResult, []error) {
	results := make([]domain.SummaryResult, len(docs))

	if !s.client.Configured() || len(docs) == 0 {
		return results, nil
	}

	errs := make([]error, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(s.maxConcurrency)

	for i, doc := range docs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			result, err := s.SummarizeOne(ctx, doc, style)
			if err != nil {
				s.logger.Warn().Err(err).Str(logKeyDocID, doc.ID).Msg("per-item summarization failed")
				errs[i] = err

				return nil
			}

			results[i] = result

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors, failures degrade per document

	var softErrors []error

	for _, err := range errs {
		if err != nil {
			softErrors = append(softErrors, err)
		}
	}

	return results, softErrors
}

// parseSingleResult parses one {"summary", "key_points"} object, tolerating
// array-wrapped and malformed responses via the repair chain.
func parseSingleResult(content string) (domain.SummaryResult, error) {
	results, _, err := repairResults(content, 1)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	if results[0].Empty() {
		return domain.SummaryResult{}, errors.ErrEmptyResponse
	}

	return results[0], nil
}
