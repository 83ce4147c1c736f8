// internal/retrieval/context.go
package retrieval

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// ContextBuilder formats retrieved passages into the numbered context block
// injected into prompts, bounded by a token budget rather than a character
// count so the block never crowds out the instructions.
type ContextBuilder struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
}

// NewContextBuilder creates a builder for the given model's tokenizer with
// the given token budget for the whole block.
func NewContextBuilder(model string, maxTokens int) (*ContextBuilder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &ContextBuilder{tokenizer: enc, maxTokens: maxTokens}, nil
}

func (b *ContextBuilder) countTokens(text string) int {
	return len(b.tokenizer.Encode(text, nil, nil))
}

// Build renders passages as "[n] (score: x.xxx)\ntext" entries, best first,
// stopping before the token budget is exceeded. Passages must already be
// ordered best-first.
func (b *ContextBuilder) Build(passages []Passage) string {
	var parts []string
	used := 0

	for i, p := range passages {
		entry := fmt.Sprintf("[%d] (score: %.3f)\n%s\n", i+1, p.Score(), p.Text)
		tokens := b.countTokens(entry)
		if used+tokens > b.maxTokens {
			break
		}
		parts = append(parts, entry)
		used += tokens
	}

	return strings.Join(parts, "\n")
}
