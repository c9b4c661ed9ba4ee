package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpipe/contentpipe/internal/core/domain"
)

func testDocument() *domain.Document {
	return &domain.Document{
		ID:    "doc-1",
		Title: "Regulators approve new fusion reactor design",
		Body: "Regulators approved a new fusion reactor design on Monday. " +
			"The approval follows a decade of safety reviews. " +
			"Weather in the region was mild this week. " +
			"The reactor design uses magnetic confinement to sustain plasma. " +
			"Construction of the first reactor is expected to begin next year.",
		Keywords: []string{"reactor", "fusion"},
	}
}

func TestExtractive_SingleSentence(t *testing.T) {
	s := NewExtractiveSummarizer()

	result := s.Summarize(testDocument(), domain.StyleSingleSentence)

	require.NotEmpty(t, result.Summary)
	assert.False(t, strings.Contains(result.Summary, "\n"))
	// The weather sentence shares no tokens with title or keywords.
	assert.NotContains(t, result.Summary, "Weather")
}

func TestExtractive_BulletPoints(t *testing.T) {
	s := NewExtractiveSummarizer()

	result := s.Summarize(testDocument(), domain.StyleBulletPoints)

	require.NotEmpty(t, result.Summary)

	lines := strings.Split(result.Summary, "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.LessOrEqual(t, len(lines), 5)

	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "- "), "line %q should be a bullet", line)
	}
}

func TestExtractive_ShortParagraph_OriginalOrder(t *testing.T) {
	s := NewExtractiveSummarizer()
	doc := testDocument()

	result := s.Summarize(doc, domain.StyleShortParagraph)

	require.NotEmpty(t, result.Summary)

	// Selected sentences must appear in original document order.
	first := strings.Index(result.Summary, "Regulators approved")
	last := strings.Index(result.Summary, "Construction")

	if first >= 0 && last >= 0 {
		assert.Less(t, first, last)
	}
}

func TestExtractive_KeyPoints(t *testing.T) {
	s := NewExtractiveSummarizer()

	result := s.Summarize(testDocument(), domain.StyleShortParagraph)

	require.NotEmpty(t, result.KeyPoints)
	assert.LessOrEqual(t, len(result.KeyPoints), extractiveMaxKeyPoints)
}

func TestExtractive_EmptyBody(t *testing.T) {
	s := NewExtractiveSummarizer()

	result := s.Summarize(&domain.Document{Title: "Just a headline"}, domain.StyleShortParagraph)
	assert.Equal(t, "Just a headline", result.Summary)

	result = s.Summarize(&domain.Document{}, domain.StyleShortParagraph)
	assert.NotEmpty(t, result.Summary, "summary must never be empty")
}

func TestExtractive_Deterministic(t *testing.T) {
	s := NewExtractiveSummarizer()

	first := s.Summarize(testDocument(), domain.StyleDetailed)
	second := s.Summarize(testDocument(), domain.StyleDetailed)

	assert.Equal(t, first, second)
}
