package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short note", 100, 10)
	if len(chunks) != 1 || chunks[0] != "short note" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestSplitTextChunkBounds(t *testing.T) {
	text := strings.Repeat("patient stable, continue current plan. ", 40)
	chunks := SplitText(text, 120, 20)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if got := len([]rune(chunk)); got > 120 {
			t.Fatalf("chunk %d has %d runes, limit 120", i, got)
		}
	}
	// Nothing is lost: the last chunk carries the tail of the input.
	if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
		t.Fatal("last chunk is not the tail of the input")
	}
}

func TestSplitTextPrefersWordBoundaries(t *testing.T) {
	text := strings.Repeat("hydrochlorothiazide ", 30)
	chunks := SplitText(text, 50, 0)
	for i, chunk := range chunks[:len(chunks)-1] {
		if strings.HasSuffix(strings.TrimRight(chunk, " "), "hydro") {
			t.Fatalf("chunk %d cut mid-word: %q", i, chunk)
		}
		trimmed := strings.TrimSpace(chunk)
		for _, word := range strings.Fields(trimmed) {
			if word != "hydrochlorothiazide" {
				t.Fatalf("chunk %d split a word: %q", i, word)
			}
		}
	}
}

func TestSplitTextUnbrokenRun(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := SplitText(text, 100, 0)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if joined := strings.Join(chunks, ""); joined != text {
		t.Fatal("chunks do not reassemble the input")
	}
}
