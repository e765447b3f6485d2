package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain"
)

const promptEncoding = "cl100k_base"

// TokenCounter returns the number of model tokens in text.
type TokenCounter func(text string) int

// PromptGuard rejects empty prompts and prompts longer than the token budget.
type PromptGuard struct {
	maxTokens int
	count     TokenCounter
}

// NewPromptGuard counts with tiktoken. If the BPE ranks cannot be loaded it
// falls back to a rune-based estimate so submissions keep working.
func NewPromptGuard(maxTokens int, logger *zerolog.Logger) *PromptGuard {
	count := approxTokens
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		logger.Warn().Err(err).Str("encoding", promptEncoding).Msg("tokenizer unavailable; estimating prompt length")
	} else {
		count = func(s string) int { return len(enc.EncodeOrdinary(s)) }
	}
	return NewPromptGuardWithCounter(maxTokens, count)
}

func NewPromptGuardWithCounter(maxTokens int, count TokenCounter) *PromptGuard {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if count == nil {
		count = approxTokens
	}
	return &PromptGuard{maxTokens: maxTokens, count: count}
}

// Check returns the trimmed prompt or a validation error.
func (g *PromptGuard) Check(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is empty", domain.ErrInvalidArgument)
	}
	if n := g.count(prompt); n > g.maxTokens {
		return "", fmt.Errorf("%w: %d tokens, limit %d", domain.ErrPromptTooLong, n, g.maxTokens)
	}
	return prompt, nil
}

// approxTokens assumes ~4 characters per token.
func approxTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}
