package pipeline

import (
	"fmt"
	"strings"

	"github.com/contentpipe/contentpipe/internal/core/domain"
)

const systemPrompt = "You are a precise summarization engine. You follow output format instructions exactly and never add commentary."

const batchPromptHeaderFmt = `Summarize each of the %d documents below.
Return ONLY a JSON array with exactly %d objects, one object per document, in the same order as the documents appear.
Each object has the shape {"summary": "...", "key_points": ["...", "..."]}.
Do not wrap the array in markdown fences. Do not add text before or after the array.
%s`

const singlePromptHeaderFmt = `Summarize the document below.
Return ONLY a JSON object of the shape {"summary": "...", "key_points": ["...", "..."]}.
Do not wrap the object in markdown fences. Do not add text before or after it.
%s`

func styleInstruction(style domain.SummaryStyle) string {
	switch style {
	case domain.StyleSingleSentence:
		return "The summary must be a single sentence of at most 30 words."
	case domain.StyleBulletPoints:
		return "The summary must be 3-5 short bullet lines, each starting with \"- \"."
	case domain.StyleShortParagraph:
		return "The summary must be one short paragraph of 2-4 sentences."
	case domain.StyleDetailed:
		return "The summary must be a detailed paragraph covering all major points, up to 8 sentences."
	}

	return "The summary must be one short paragraph of 2-4 sentences."
}

func buildBatchPrompt(docs []*domain.Document, bodies []string, style domain.SummaryStyle) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(batchPromptHeaderFmt, len(docs), len(docs), styleInstruction(style)))

	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("\n[%d] Title: %s", i, doc.Title))

		if doc.Source != "" {
			sb.WriteString(fmt.Sprintf(" (Source: %s)", doc.Source))
		}

		if bodies[i] != "" {
			sb.WriteString("\n")
			sb.WriteString(bodies[i])
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func buildSinglePrompt(doc *domain.Document, body string, style domain.SummaryStyle) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(singlePromptHeaderFmt, styleInstruction(style)))
	sb.WriteString(fmt.Sprintf("\nTitle: %s", doc.Title))

	if doc.Source != "" {
		sb.WriteString(fmt.Sprintf(" (Source: %s)", doc.Source))
	}

	if body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
	}

	return sb.String()
}
