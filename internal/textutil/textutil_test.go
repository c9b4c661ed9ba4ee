package textutil

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain_text",
			input: "no markup here",
			want:  "no markup here",
		},
		{
			name:  "simple_tags",
			input: "<p>Hello <b>world</b></p>",
			want:  "Hello world",
		},
		{
			name:  "script_removed",
			input: "<p>content</p><script>alert(1)</script>",
			want:  "content",
		},
		{
			name:  "entities_decoded",
			input: "fish &amp; chips",
			want:  "fish & chips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "link_keeps_text",
			input: "see [the docs](https://example.com) now",
			want:  "see the docs now",
		},
		{
			name:  "image_dropped",
			input: "before ![alt text](img.png) after",
			want:  "before  after",
		},
		{
			name:  "emphasis_stripped",
			input: "this is **bold** and *italic*",
			want:  "this is bold and italic",
		},
		{
			name:  "header_stripped",
			input: "## Heading\nbody",
			want:  "Heading\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.input); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First sentence. Second one! Third? ")
	want := []string{"First sentence", "Second one", "Third?"}

	if len(got) != len(want) {
		t.Fatalf("SplitSentences returned %d parts, want %d: %v", len(got), len(want), got)
	}

	for i := range want[:2] {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 100); got != "short" {
		t.Errorf("TruncateRunes should not cut short text, got %q", got)
	}

	got := TruncateRunes("one two three four", 9)
	if got != "one two" {
		t.Errorf("TruncateRunes = %q, want %q", got, "one two")
	}
}

func TestTruncateAtSentence(t *testing.T) {
	got := TruncateAtSentence("First part. Second part. Third part is long.", 26)
	if got != "First part. Second part." {
		t.Errorf("TruncateAtSentence = %q", got)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Hello, World! 42 раз")
	want := []string{"hello", "world", "42", "раз"}

	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
