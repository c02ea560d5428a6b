// Package chunker splits extracted document text into overlapping,
// bounded-size chunks for embedding and retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Config configures the chunker behavior.
type Config struct {
	// TargetSize is the approximate characters per chunk
	TargetSize int

	// Overlap is the character overlap between consecutive chunks
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TargetSize:         1000,
		Overlap:            200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Chunker splits text into overlapping chunks. Split is a pure function of
// the text and the config: the same input always produces the same chunks.
type Chunker struct {
	config Config
}

// New creates a chunker, clamping config values that would prevent progress.
func New(config Config) *Chunker {
	if config.TargetSize <= 0 {
		config.TargetSize = DefaultConfig().TargetSize
	}
	if config.Overlap < 0 {
		config.Overlap = 0
	}
	if config.Overlap >= config.TargetSize {
		config.Overlap = config.TargetSize / 5
	}
	return &Chunker{config: config}
}

// Split chunks text into windows of roughly TargetSize characters, repeating
// Overlap characters at the start of each window after the first. Empty or
// whitespace-only input produces zero chunks; input shorter than TargetSize
// produces exactly one. No chunk is ever empty.
//
// Sizes and offsets are counted in runes, never bytes, so multibyte text is
// never cut mid-character.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.config.TargetSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + c.config.TargetSize
		if end > len(runes) {
			end = len(runes)
		}

		// Try to find a good break point
		if end < len(runes) {
			if breakPoint := c.findBreakPoint(runes, start, end); breakPoint > start {
				end = breakPoint
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		// Move start back by the overlap, ensuring we always advance
		nextStart := end - c.config.Overlap
		if nextStart <= start {
			nextStart = start + 1
		}
		start = nextStart
	}

	return chunks
}

// findBreakPoint finds a good break point near maxEnd, preferring paragraph,
// then sentence, then word boundaries. Offsets in and out are rune indices
// into runes; matching happens on the window string, so byte positions from
// strings.LastIndex are translated back to rune counts.
func (c *Chunker) findBreakPoint(runes []rune, start, maxEnd int) int {
	searchStart := maxEnd - 100
	if searchStart < start {
		searchStart = start
	}

	window := string(runes[searchStart:maxEnd])

	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
			return searchStart + utf8.RuneCountInString(window[:idx+2])
		}
	}

	if c.config.PreserveSentences {
		sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
		bestIdx := -1
		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(window, ender); idx != -1 {
				if endPos := idx + len(ender); endPos > bestIdx {
					bestIdx = endPos
				}
			}
		}
		if bestIdx > 0 {
			return searchStart + utf8.RuneCountInString(window[:bestIdx])
		}
	}

	// Fall back to a word boundary rather than splitting mid-word
	if idx := strings.LastIndex(window, " "); idx != -1 {
		return searchStart + utf8.RuneCountInString(window[:idx+1])
	}

	return maxEnd
}
