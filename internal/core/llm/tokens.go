package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// Rough heuristic when the tokenizer is unavailable.
	runesPerToken = 4

	fallbackEncoding = "cl100k_base"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens returns an estimate of the token count of text for the
// given model. It prefers the model's tiktoken encoding and falls back to a
// rune-count heuristic when no encoding is available (offline builds,
// unknown models).
func EstimateTokens(model, text string) int {
	if enc := loadEncoding(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}

	return len([]rune(text))/runesPerToken + 1
}

func loadEncoding(model string) *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(model)
		if err != nil {
			enc, err = tiktoken.GetEncoding(fallbackEncoding)
			if err != nil {
				return
			}
		}

		encoding = enc
	})

	return encoding
}
