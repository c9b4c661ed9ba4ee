// Package domain holds the core data model shared across the pipeline.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/contentpipe/contentpipe/internal/core/errors"
)

// SummaryStyle controls prompt phrasing and truncation targets.
type SummaryStyle string

const (
	StyleSingleSentence SummaryStyle = "single_sentence"
	StyleBulletPoints   SummaryStyle = "bullet_points"
	StyleShortParagraph SummaryStyle = "short_paragraph"
	StyleDetailed       SummaryStyle = "detailed"
)

// ParseStyle converts a raw string into a SummaryStyle.
func ParseStyle(raw string) (SummaryStyle, error) {
	style := SummaryStyle(strings.ToLower(strings.TrimSpace(raw)))

	switch style {
	case StyleSingleSentence, StyleBulletPoints, StyleShortParagraph, StyleDetailed:
		return style, nil
	}

	return "", fmt.Errorf("%w: unknown summary style %q", errors.ErrInvalidInput, raw)
}

// Tier identifies which layer of the fallback chain produced a summary.
type Tier string

const (
	TierBatch      Tier = "batch"
	TierConcurrent Tier = "concurrent"
	TierExtractive Tier = "extractive"
	TierCache      Tier = "cache"
)

// Document is the identity-bearing unit of work. Collectors create it, the
// pipeline mutates Summary, KeyPoints and Tier in place, and the store
// persists it after processing.
type Document struct {
	ID          string
	Title       string
	Body        string
	URL         string
	Source      string
	Keywords    []string
	Summary     string
	KeyPoints   []string
	Tier        Tier
	PublishedAt time.Time
	FetchedAt   time.Time
}

// SummaryResult is produced by exactly one layer of the fallback chain and
// attached to exactly one Document.
type SummaryResult struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// Empty reports whether the result is a placeholder that still needs fallback.
func (r SummaryResult) Empty() bool {
	return strings.TrimSpace(r.Summary) == ""
}
