package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/llm"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/platform/observability"
	"github.com/contentpipe/contentpipe/internal/textutil"
)

// BatchProcessor is the primary summarization strategy: many documents per
// provider request. Groups are bounded by count and by total truncated
// content length; responses go through the repair chain. A failed group is
// reported as empty placeholders for its documents, never as a pipeline
// error.
type BatchProcessor struct {
	client           llm.Client
	logger           *zerolog.Logger
	model            string
	maxBatchSize     int
	maxContentLength int
	callTimeout      time.Duration
}

func NewBatchProcessor(client llm.Client, cfg *config.Config, logger *zerolog.Logger) *BatchProcessor {
	maxBatchSize := cfg.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}

	maxContentLength := cfg.MaxContentLength
	if maxContentLength <= 0 {
		maxContentLength = defaultMaxContentLength
	}

	callTimeout := cfg.BatchCallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultBatchCallTimeout
	}

	return &BatchProcessor{
		client:           client,
		logger:           logger,
		model:            cfg.LLMModel,
		maxBatchSize:     maxBatchSize,
		maxContentLength: maxContentLength,
		callTimeout:      callTimeout,
	}
}

// batchGroup pairs a slice of documents with their per-item truncated bodies.
type batchGroup struct {
	docs   []*domain.Document
	bodies []string
}

// Process summarizes docs group by group. The returned slice is aligned with
// docs: position i holds the result for document i, empty when its group
// failed. Per-group soft errors are returned for observability; they never
// abort processing of the remaining groups.
func (p *BatchProcessor) Process(ctx context.Context, docs []*domain.Document, style domain.SummaryStyle) ([]domain.SummaryResult, []error) {
	results := make([]domain.SummaryResult, len(docs))

	if !p.client.Configured() || len(docs) == 0 {
		return results, nil
	}

	var softErrors []error

	offset := 0

	for groupIdx, group := range p.buildGroups(docs) {
		if ctx.Err() != nil {
			break
		}

		groupResults, err := p.processGroup(ctx, group, style)
		if err != nil {
			softErrors = append(softErrors, fmt.Errorf(errFmtGroupCall, groupIdx, err))
			observability.BatchGroups.WithLabelValues(observability.StatusError).Inc()

			p.logger.Warn().Err(err).
				Int(logKeyGroup, groupIdx).
				Int(logKeyCount, len(group.docs)).
				Msg("batch group failed")
		} else {
			copy(results[offset:], groupResults)
			observability.BatchGroups.WithLabelValues(observability.StatusSuccess).Inc()
		}

		offset += len(group.docs)
	}

	return results, softErrors
}

// buildGroups splits docs into groups of at most maxBatchSize documents.
// Each item's body is truncated to its proportional share of
// maxContentLength; groups whose rendered prompt still estimates above the
// token ceiling are split in half.
func (p *BatchProcessor) buildGroups(docs []*domain.Document) []batchGroup {
	var groups []batchGroup

	for start := 0; start < len(docs); start += p.maxBatchSize {
		end := start + p.maxBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		groups = append(groups, p.splitByTokenBudget(p.truncateGroup(docs[start:end]))...)
	}

	return groups
}

func (p *BatchProcessor) truncateGroup(docs []*domain.Document) batchGroup {
	perItemBudget := p.maxContentLength / len(docs)
	bodies := make([]string, len(docs))

	for i, doc := range docs {
		bodies[i] = textutil.TruncateRunes(doc.Body, perItemBudget)
	}

	return batchGroup{docs: docs, bodies: bodies}
}

func (p *BatchProcessor) splitByTokenBudget(group batchGroup) []batchGroup {
	if len(group.docs) <= 1 {
		return []batchGroup{group}
	}

	prompt := buildBatchPrompt(group.docs, group.bodies, domain.StyleShortParagraph)
	if llm.EstimateTokens(p.model, prompt) <= maxPromptTokens {
		return []batchGroup{group}
	}

	mid := len(group.docs) / 2
	p.logger.Debug().Int(logKeyCount, len(group.docs)).Msg("splitting batch group over token budget")

	left := batchGroup{docs: group.docs[:mid], bodies: group.bodies[:mid]}
	right := batchGroup{docs: group.docs[mid:], bodies: group.bodies[mid:]}

	return append(p.splitByTokenBudget(left), p.splitByTokenBudget(right)...)
}

// maxTokensForGroup scales the completion budget with group size, capped at
// the provider ceiling.
func maxTokensForGroup(size int) int {
	budget := batchTokenBase + batchTokenPerItem*size
	if budget > batchTokenCeiling {
		return batchTokenCeiling
	}

	return budget
}

func (p *BatchProcessor) processGroup(ctx context.Context, group batchGroup, style domain.SummaryStyle) ([]domain.SummaryResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	content, err := p.client.Complete(callCtx, llm.CompletionRequest{
		System:    systemPrompt,
		Prompt:    buildBatchPrompt(group.docs, group.bodies, style),
		Model:     p.model,
		MaxTokens: maxTokensForGroup(len(group.docs)),
	})
	if err != nil {
		return nil, err
	}

	results, strategy, err := repairResults(content, len(group.docs))
	if err != nil {
		return nil, err
	}

	if strategy != repairChain[0].name {
		p.logger.Info().
			Str(logKeyStrategy, strategy).
			Int(logKeyCount, len(group.docs)).
			Msg("batch response repaired")
	}

	return results, nil
}
