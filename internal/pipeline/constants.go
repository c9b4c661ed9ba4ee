package pipeline

import "time"

// Batch dispatch limits
const (
	defaultMaxBatchSize     = 20
	defaultMaxContentLength = 48000
	defaultMaxConcurrency   = 5

	// Prompts above this token estimate are split before dispatch.
	maxPromptTokens = 60000

	// Token budget scaling for batch calls.
	batchTokenBase    = 1000
	batchTokenPerItem = 600
	batchTokenCeiling = 16000

	// Per-item calls get a fixed budget.
	singleCallMaxTokens = 1200
)

// Timeouts
const (
	defaultSingleCallTimeout = 30 * time.Second
	defaultBatchCallTimeout  = 300 * time.Second
)

// Extractive summarizer limits
const (
	bulletMinSentences     = 3
	bulletMaxSentences     = 5
	paragraphTopSentences  = 5
	detailedTopSentences   = 7
	paragraphMaxRunes      = 600
	detailedMaxRunes       = 1200
	keyPointMaxRunes       = 200
	extractiveMaxKeyPoints = 3
)

// Feature derivation limits
const (
	maxExtractedKeywords = 10
	minKeywordRunes      = 3
)

// Log key strings
const (
	logKeyDocID    = "doc_id"
	logKeyGroup    = "group"
	logKeyCount    = "count"
	logKeyStrategy = "strategy"
)

// Error format strings
const (
	errFmtGroupCall  = "batch group %d: %w"
	errFmtSingleCall = "summarize document %s: %w"
)
