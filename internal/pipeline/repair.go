package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/errors"
)

// The provider's response is untrusted text: it may be a clean JSON array, a
// wrapped object, fenced markdown, or an array cut off mid-object by the
// output token limit. Each repair strategy is a pure function tried in order
// until one recovers at least one result; recovered results are padded with
// empty placeholders up to the expected count, and callers treat empty
// placeholders as failures needing further fallback.
type repairStrategy struct {
	name string
	fn   func(content string) []domain.SummaryResult
}

var repairChain = []repairStrategy{
	{name: "strict", fn: parseStrict},
	{name: "extract_array", fn: parseExtractedArray},
	{name: "truncated", fn: parseTruncatedArray},
	{name: "loose_objects", fn: parseLooseObjects},
	{name: "split_objects", fn: parseSplitObjects},
}

var (
	flatObjectRegex = regexp.MustCompile(`\{[^{}]*\}`)
	summaryRegex    = regexp.MustCompile(`"summary"\s*:\s*("(?:[^"\\]|\\.)*")`)
	keyPointsRegex  = regexp.MustCompile(`"key_points"\s*:\s*\[([^\]]*)`)
	quotedRegex     = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	objectSeamRegex = regexp.MustCompile(`\}\s*,\s*\{`)
)

// repairResults runs the strategy chain over raw provider output. It returns
// the recovered results aligned and padded to expected, plus the name of the
// strategy that succeeded. Position i of the output always corresponds to
// input document i; content is never re-matched.
func repairResults(content string, expected int) ([]domain.SummaryResult, string, error) {
	content = strings.TrimSpace(content)

	for _, strategy := range repairChain {
		results := strategy.fn(content)
		if len(results) == 0 {
			continue
		}

		if len(results) > expected {
			results = results[:expected]
		}

		for len(results) < expected {
			results = append(results, domain.SummaryResult{})
		}

		return results, strategy.name, nil
	}

	return nil, "", errors.ErrNoResultsExtracted
}

// parseStrict parses the whole response as a JSON array, accepting the
// common wrapper object shapes JSON mode produces.
func parseStrict(content string) []domain.SummaryResult {
	var results []domain.SummaryResult
	if err := json.Unmarshal([]byte(content), &results); err == nil {
		return results
	}

	var wrapper struct {
		Results   []domain.SummaryResult `json:"results"`
		Summaries []domain.SummaryResult `json:"summaries"`
		Items     []domain.SummaryResult `json:"items"`
	}

	if err := json.Unmarshal([]byte(content), &wrapper); err == nil {
		for _, candidate := range [][]domain.SummaryResult{wrapper.Results, wrapper.Summaries, wrapper.Items} {
			if len(candidate) > 0 {
				return candidate
			}
		}
	}

	return nil
}

// parseExtractedArray strict-parses the outermost [...] span, which handles
// markdown fences and conversational preambles around a valid array.
func parseExtractedArray(content string) []domain.SummaryResult {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")

	if start < 0 || end <= start {
		return nil
	}

	var results []domain.SummaryResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &results); err == nil {
		return results
	}

	return nil
}

// parseTruncatedArray recovers complete {...} objects from an array that was
// cut off mid-stream. Objects in this schema are flat, so a non-nesting
// brace match is sufficient. An empty or unparseable object keeps an empty
// placeholder at its position: dropping it would shift every later result
// onto the wrong document.
func parseTruncatedArray(content string) []domain.SummaryResult {
	matches := flatObjectRegex.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	results := make([]domain.SummaryResult, len(matches))
	recovered := 0

	for i, m := range matches {
		var r domain.SummaryResult
		if err := json.Unmarshal([]byte(m), &r); err != nil || r.Empty() {
			continue
		}

		results[i] = r
		recovered++
	}

	if recovered == 0 {
		return nil
	}

	return results
}

// parseLooseObjects recovers summary values even when key_points syntax is
// broken, re-extracting key points best effort from the span between
// consecutive summary fields. A blank summary keeps an empty placeholder at
// its position so later results stay aligned with their documents.
func parseLooseObjects(content string) []domain.SummaryResult {
	locs := summaryRegex.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	results := make([]domain.SummaryResult, len(locs))
	recovered := 0

	for i, loc := range locs {
		summary, ok := unquoteJSONString(content[loc[2]:loc[3]])
		if !ok || strings.TrimSpace(summary) == "" {
			continue
		}

		spanEnd := len(content)
		if i+1 < len(locs) {
			spanEnd = locs[i+1][0]
		}

		results[i] = domain.SummaryResult{
			Summary:   summary,
			KeyPoints: extractLooseKeyPoints(content[loc[1]:spanEnd]),
		}
		recovered++
	}

	if recovered == 0 {
		return nil
	}

	return results
}

func extractLooseKeyPoints(span string) []string {
	kpMatch := keyPointsRegex.FindStringSubmatch(span)
	if kpMatch == nil {
		return nil
	}

	quoted := quotedRegex.FindAllString(kpMatch[1], -1)
	points := make([]string, 0, len(quoted))

	for _, q := range quoted {
		if point, ok := unquoteJSONString(q); ok && strings.TrimSpace(point) != "" {
			points = append(points, point)
		}
	}

	return points
}

// parseSplitObjects is the last resort: split the payload on object seams
// and parse each fragment independently, falling back to loose field
// extraction per fragment.
func parseSplitObjects(content string) []domain.SummaryResult {
	trimmed := strings.Trim(content, "[] \n\t")
	if trimmed == "" {
		return nil
	}

	fragments := objectSeamRegex.Split(trimmed, -1)
	results := make([]domain.SummaryResult, 0, len(fragments))
	recovered := 0

	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			results = append(results, domain.SummaryResult{})
			continue
		}

		if !strings.HasPrefix(fragment, "{") {
			fragment = "{" + fragment
		}

		if !strings.HasSuffix(fragment, "}") {
			fragment += "}"
		}

		var r domain.SummaryResult
		if err := json.Unmarshal([]byte(fragment), &r); err == nil && !r.Empty() {
			results = append(results, r)
			recovered++

			continue
		}

		if loose := parseLooseObjects(fragment); len(loose) > 0 {
			results = append(results, loose...)
			recovered++

			continue
		}

		// Unrecoverable fragment keeps a placeholder at its position.
		results = append(results, domain.SummaryResult{})
	}

	if recovered == 0 {
		return nil
	}

	return results
}

func unquoteJSONString(quoted string) (string, bool) {
	var s string
	if err := json.Unmarshal([]byte(quoted), &s); err != nil {
		return "", false
	}

	return s, true
}
