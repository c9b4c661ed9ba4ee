package pipeline

import (
	"sort"
	"strings"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/textutil"
)

// ExtractiveSummarizer is the terminal fallback: a pure function over the
// document's own sentences. No I/O, cannot fail, always returns a non-empty
// summary for any document that has a title or body.
type ExtractiveSummarizer struct{}

func NewExtractiveSummarizer() *ExtractiveSummarizer {
	return &ExtractiveSummarizer{}
}

type scoredSentence struct {
	text  string
	index int
	score int
}

// Summarize builds a summary by selecting existing sentences scored by
// keyword hits and title-token overlap.
func (s *ExtractiveSummarizer) Summarize(doc *domain.Document, style domain.SummaryStyle) domain.SummaryResult {
	sentences := textutil.SplitSentences(doc.Body)
	if len(sentences) == 0 {
		return domain.SummaryResult{Summary: fallbackSummary(doc)}
	}

	scored := scoreSentences(sentences, doc.Title, doc.Keywords)

	return domain.SummaryResult{
		Summary:   renderSummary(scored, style),
		KeyPoints: topKeyPoints(scored, extractiveMaxKeyPoints),
	}
}

func fallbackSummary(doc *domain.Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}

	if body := strings.TrimSpace(doc.Body); body != "" {
		return textutil.TruncateRunes(body, paragraphMaxRunes)
	}

	return "No content available."
}

func scoreSentences(sentences []string, title string, keywords []string) []scoredSentence {
	titleTokens := make(map[string]bool)
	for _, tok := range textutil.Tokenize(title) {
		titleTokens[tok] = true
	}

	scored := make([]scoredSentence, 0, len(sentences))

	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		score := 0

		for _, kw := range keywords {
			if containsKeyword(lower, kw) {
				score++
			}
		}

		for _, tok := range textutil.Tokenize(sentence) {
			if titleTokens[tok] {
				score++
			}
		}

		scored = append(scored, scoredSentence{text: sentence, index: i, score: score})
	}

	return scored
}

// topByScore returns the n highest-scoring sentences reordered back into
// original document order. Score ties break toward earlier sentences.
func topByScore(scored []scoredSentence, n int) []scoredSentence {
	byScore := make([]scoredSentence, len(scored))
	copy(byScore, scored)

	sort.Slice(byScore, func(i, j int) bool {
		if byScore[i].score != byScore[j].score {
			return byScore[i].score > byScore[j].score
		}

		return byScore[i].index < byScore[j].index
	})

	if len(byScore) > n {
		byScore = byScore[:n]
	}

	sort.Slice(byScore, func(i, j int) bool {
		return byScore[i].index < byScore[j].index
	})

	return byScore
}

func renderSummary(scored []scoredSentence, style domain.SummaryStyle) string {
	switch style {
	case domain.StyleSingleSentence:
		return topByScore(scored, 1)[0].text

	case domain.StyleBulletPoints:
		n := bulletMaxSentences
		if len(scored) < bulletMinSentences {
			n = len(scored)
		}

		top := topByScore(scored, n)
		lines := make([]string, 0, len(top))

		for _, s := range top {
			lines = append(lines, "- "+s.text)
		}

		return strings.Join(lines, "\n")

	case domain.StyleDetailed:
		return joinTruncated(topByScore(scored, detailedTopSentences), detailedMaxRunes)
	}

	return joinTruncated(topByScore(scored, paragraphTopSentences), paragraphMaxRunes)
}

func joinTruncated(top []scoredSentence, maxRunes int) string {
	parts := make([]string, 0, len(top))
	for _, s := range top {
		parts = append(parts, s.text)
	}

	return textutil.TruncateAtSentence(strings.Join(parts, " "), maxRunes)
}

func topKeyPoints(scored []scoredSentence, n int) []string {
	top := topByScore(scored, n)
	points := make([]string, 0, len(top))

	for _, s := range top {
		points = append(points, textutil.TruncateRunes(s.text, keyPointMaxRunes))
	}

	return points
}
