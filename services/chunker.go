package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits raw text into bounded pieces suitable for embedding. The
// recursive character splitter handles paragraph and sentence boundaries; a
// final pass enforces the hard length limit on anything it left oversized,
// preferring the nearest preceding whitespace within the tolerance window.
type Chunker struct {
	maxLen    int
	minLen    int
	tolerance int
}

// NewChunker creates a Chunker producing pieces of at most maxLen runes and
// rejecting input shorter than minLen runes after trimming.
func NewChunker(maxLen, minLen int) *Chunker {
	tolerance := maxLen / 10
	if tolerance < 1 {
		tolerance = 1
	}
	return &Chunker{maxLen: maxLen, minLen: minLen, tolerance: tolerance}
}

// Chunk returns the ordered non-empty pieces of text. The caller's extraction
// layer performs the same minimum-length check, but it is re-enforced here
// since the orchestrator must not trust the caller.
func (c *Chunker) Chunk(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < c.minLen {
		return nil, validationErrorf("text too short: need at least %d characters", c.minLen)
	}

	if len([]rune(trimmed)) <= c.maxLen {
		return []string{trimmed}, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.maxLen),
		textsplitter.WithChunkOverlap(0),
	)
	pieces, err := splitter.SplitText(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	chunks := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		for _, part := range c.splitHard(piece) {
			part = strings.TrimSpace(part)
			if part != "" {
				chunks = append(chunks, part)
			}
		}
	}
	if len(chunks) == 0 {
		return nil, validationErrorf("text produced no indexable chunks")
	}
	return chunks, nil
}

// splitHard cuts s into runs of at most maxLen runes. Within the tolerance
// window before the limit it cuts at the last whitespace; with no boundary in
// the window it cuts at the hard limit.
func (c *Chunker) splitHard(s string) []string {
	runes := []rune(s)
	if len(runes) <= c.maxLen {
		return []string{s}
	}

	var parts []string
	for len(runes) > c.maxLen {
		cut := c.maxLen
		for i := c.maxLen - 1; i >= c.maxLen-c.tolerance; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
