package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitEmptyInput(t *testing.T) {
	c := New(DefaultConfig())

	if chunks := c.Split(""); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty input, got %d", len(chunks))
	}
	if chunks := c.Split("   \n\t  "); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for whitespace input, got %d", len(chunks))
	}
}

func TestSplitShortText(t *testing.T) {
	c := New(Config{TargetSize: 100, Overlap: 20})

	chunks := c.Split("a short document")
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Errorf("unexpected chunk content: %q", chunks[0])
	}
}

func TestSplitNeverEmitsEmptyChunks(t *testing.T) {
	c := New(Config{TargetSize: 50, Overlap: 10, PreserveSentences: true})

	text := strings.Repeat("some words here. ", 100)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestSplitBoundsChunkSize(t *testing.T) {
	cfg := Config{TargetSize: 80, Overlap: 20, PreserveSentences: true}
	c := New(cfg)

	text := strings.Repeat("alpha beta gamma delta. ", 50)
	for i, chunk := range c.Split(text) {
		if len(chunk) > cfg.TargetSize {
			t.Errorf("chunk %d exceeds target size: %d > %d", i, len(chunk), cfg.TargetSize)
		}
	}
}

func TestSplitPrefersWordBoundaries(t *testing.T) {
	c := New(Config{TargetSize: 40, Overlap: 5})

	text := strings.Repeat("boundary ", 30)
	for i, chunk := range c.Split(text) {
		for _, word := range strings.Fields(chunk) {
			if word != "boundary" {
				t.Errorf("chunk %d split mid-word: %q", i, word)
			}
		}
	}
}

func TestSplitOverlapRepeatsContext(t *testing.T) {
	c := New(Config{TargetSize: 60, Overlap: 20})

	text := strings.Repeat("overlap test words. ", 20)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The tail of each chunk should reappear at the head of the next one
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-10:]
		joined := strings.Join(chunks, " ")
		if !strings.Contains(joined, tail) {
			t.Errorf("overlap content %q lost between chunks %d and %d", tail, i-1, i)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	c := New(DefaultConfig())

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 100)
	first := c.Split(text)
	second := c.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitCoversAllContent(t *testing.T) {
	c := New(Config{TargetSize: 100, Overlap: 30, PreserveSentences: true})

	text := "First sentence here. Second sentence follows. Third one too. " +
		"Fourth statement now. Fifth keeps going. Sixth wraps it up. " +
		"Seventh for good measure. Eighth and final sentence."
	chunks := c.Split(text)
	joined := strings.Join(chunks, " ")

	for _, sentence := range strings.Split(text, ". ") {
		sentence = strings.TrimSuffix(strings.TrimSpace(sentence), ".")
		if sentence == "" {
			continue
		}
		if !strings.Contains(joined, sentence) {
			t.Errorf("sentence %q missing from chunks", sentence)
		}
	}
}

func TestSplitMultibyteTextStaysValidUTF8(t *testing.T) {
	c := New(Config{TargetSize: 100, Overlap: 20, PreserveSentences: true})

	// CJK text has no spaces near the window boundary; every window must
	// still land on a rune boundary.
	text := strings.Repeat("密码重置流程说明", 50)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, chunk)
		}
		if n := utf8.RuneCountInString(chunk); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
	}
}

func TestSplitMeasuresSizeInRunes(t *testing.T) {
	c := New(Config{TargetSize: 10, Overlap: 0})

	// 12 three-byte runes: one chunk of 10 runes, one of 2
	chunks := c.Split("一二三四五六七八九十拾壹")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 10 {
		t.Errorf("first chunk = %d runes, want 10", got)
	}
	if chunks[1] != "拾壹" {
		t.Errorf("second chunk = %q, want remainder", chunks[1])
	}
}

func TestNewClampsConfig(t *testing.T) {
	// Overlap >= target size must not stall chunking
	c := New(Config{TargetSize: 50, Overlap: 60})

	text := strings.Repeat("progress ", 40)
	chunks := c.Split(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite degenerate config")
	}
}
