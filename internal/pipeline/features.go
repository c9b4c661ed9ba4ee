package pipeline

import (
	"sort"
	"strings"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/textutil"
)

// stopwords covers English plus a handful of high-frequency Russian words;
// keyword extraction is best effort, not linguistically complete.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true,
	"have": true, "had": true, "his": true, "him": true, "she": true,
	"they": true, "them": true, "their": true, "this": true, "that": true,
	"these": true, "those": true, "with": true, "from": true, "into": true,
	"will": true, "would": true, "could": true, "should": true, "been": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "who": true, "whom": true, "why": true, "how": true,
	"its": true, "also": true, "more": true, "most": true, "some": true,
	"such": true, "than": true, "then": true, "there": true, "about": true,
	"after": true, "before": true, "over": true, "under": true, "said": true,
	"says": true, "new": true, "just": true, "now": true, "only": true,
	"как": true, "что": true, "это": true, "для": true, "или": true,
	"его": true, "все": true, "при": true, "так": true, "быть": true,
}

// deriveFeatures runs cheap synchronous cleaning and keyword extraction on
// one document. It never fails: on any internal shortfall the document keeps
// empty features and proceeds.
func deriveFeatures(doc *domain.Document) {
	doc.Title = textutil.NormalizeWhitespace(textutil.StripHTML(doc.Title))
	doc.Body = textutil.NormalizeWhitespace(textutil.StripHTML(textutil.StripMarkdown(doc.Body)))

	if len(doc.Keywords) == 0 {
		doc.Keywords = extractKeywords(doc.Title+" "+doc.Body, maxExtractedKeywords)
	}
}

// extractKeywords returns the top-N tokens of text by frequency, filtered by
// stopwords and minimum length. Ties break toward first occurrence.
func extractKeywords(text string, limit int) []string {
	tokens := textutil.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, tok := range tokens {
		if len([]rune(tok)) < minKeywordRunes || stopwords[tok] {
			continue
		}

		counts[tok]++

		if _, ok := firstSeen[tok]; !ok {
			firstSeen[tok] = i
		}
	}

	if len(counts) == 0 {
		return nil
	}

	candidates := make([]string, 0, len(counts))
	for tok := range counts {
		candidates = append(candidates, tok)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}

		return firstSeen[candidates[i]] < firstSeen[candidates[j]]
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates
}

// containsKeyword reports whether the lowercased sentence contains the keyword.
func containsKeyword(sentenceLower, keyword string) bool {
	return strings.Contains(sentenceLower, strings.ToLower(keyword))
}
