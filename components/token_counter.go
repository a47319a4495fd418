package components

import (
	"bytes"
	"fmt"

	"github.com/clipperhouse/uax29/words"
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter defines the interface for counting tokens in a string.
// This abstraction allows for different tokenization strategies (e.g., words, subwords).
type TokenCounter interface {
	// Count returns the number of tokens in the given text according to the
	// implementation's tokenization strategy.
	Count(text string) int
}

// WordsTokenCounter approximates tokens with Unicode word segmentation (UAX #29).
// Whitespace segments are not counted.
type WordsTokenCounter struct{}

func (c WordsTokenCounter) Count(text string) int {
	var n int
	for _, seg := range words.SegmentAll([]byte(text)) {
		if len(bytes.TrimSpace(seg)) > 0 {
			n++
		}
	}
	return n
}

// TikTokenCounter provides accurate token counting using the tiktoken library,
// which implements the tokenization schemes used by OpenAI models.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a new TikTokenCounter using the specified encoding.
// Common encodings include:
// - "o200k_base" (GPT-4o)
// - "cl100k_base" (GPT-4, ChatGPT)
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the exact number of tokens in the text according to the
// specified tiktoken encoding.
func (ttc *TikTokenCounter) Count(text string) int {
	return len(ttc.tke.Encode(text, nil, nil))
}

// NewTokenCounter returns a TikTokenCounter when an encoding is given,
// WordsTokenCounter otherwise
func NewTokenCounter(encoding string) (TokenCounter, error) {
	if encoding == "" {
		return WordsTokenCounter{}, nil
	}
	return NewTikTokenCounter(encoding)
}
