// Package textutil provides text processing utilities for document cleaning:
// HTML tag stripping, Markdown markup removal, sentence splitting, and
// rune-safe truncation at word boundaries.
package textutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRegex            = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)
	sentenceSplitRegex  = regexp.MustCompile(`([.!?…]+)\s+`)
	markdownLinkRegex   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownImageRegex  = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	markdownHeaderRegex = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownEmphRegex   = regexp.MustCompile(`(\*{1,3}|_{1,3}|~~|` + "`" + `{1,3})`)
)

// StripHTML removes all HTML markup from text, keeping only the content.
// It parses the fragment with goquery and falls back to regex stripping
// when the fragment cannot be parsed.
func StripHTML(text string) string {
	if !strings.ContainsRune(text, '<') {
		return strings.TrimSpace(html.UnescapeString(text))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		stripped := tagRegex.ReplaceAllString(text, " ")
		return NormalizeWhitespace(html.UnescapeString(stripped))
	}

	doc.Find("script, style").Remove()

	return NormalizeWhitespace(doc.Text())
}

// StripMarkdown removes common Markdown markup, keeping link text and
// dropping image references entirely.
func StripMarkdown(text string) string {
	text = markdownImageRegex.ReplaceAllString(text, "")
	text = markdownLinkRegex.ReplaceAllString(text, "$1")
	text = markdownHeaderRegex.ReplaceAllString(text, "")
	text = markdownEmphRegex.ReplaceAllString(text, "")

	return text
}

// NormalizeWhitespace collapses all runs of whitespace into single spaces.
func NormalizeWhitespace(text string) string {
	parts := strings.Fields(text)
	return strings.Join(parts, " ")
}

// SplitSentences splits text into trimmed, non-empty sentences.
func SplitSentences(text string) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}

	parts := sentenceSplitRegex.Split(clean, -1)
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// TruncateRunes cuts text to at most maxRunes runes, backing up to the last
// word boundary when one exists.
func TruncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := string(runes[:maxRunes])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}

	return strings.TrimSpace(cut)
}

// TruncateAtSentence cuts text to at most maxRunes runes, preferring the last
// complete sentence boundary within the limit.
func TruncateAtSentence(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := string(runes[:maxRunes])
	if idx := strings.LastIndexAny(cut, ".!?…"); idx > 0 {
		return strings.TrimSpace(cut[:idx+1])
	}

	return TruncateRunes(text, maxRunes)
}

// Tokenize lowercases text and splits it into word tokens, dropping
// punctuation-only fragments.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})

	out := make([]string, 0, len(fields))

	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x00C0: // accented latin, cyrillic, CJK and beyond
		return true
	}

	return false
}
