package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestSplit_Paragraphs(t *testing.T) {
	chunks, err := Split("Para 1\n\nPara 2\n\nPara 3", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Para 1", "Para 2", "Para 3"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_ParagraphPacking(t *testing.T) {
	chunks, err := Split("aaa\n\nbbb\n\nccc", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "aaa\n\nbbb" || chunks[1] != "ccc" {
		t.Errorf("expected [aaa\\n\\nbbb ccc], got %q", chunks)
	}
}

func TestSplit_Sentences(t *testing.T) {
	chunks, err := Split("First sentence. Second sentence. Third sentence.", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "First sentence") {
		t.Errorf("expected first chunk to contain %q, got %q", "First sentence", chunks[0])
	}
	if !strings.Contains(chunks[2], "Third sentence") {
		t.Errorf("expected last chunk to contain %q, got %q", "Third sentence", chunks[2])
	}
}

func TestSplit_SentencePackingUsesSingleSpace(t *testing.T) {
	chunks, err := Split("One. Two!  Three?\nFour.", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"One. Two!", "Three? Four."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %q, got %q", want, chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_OversizedSentenceKeptWhole(t *testing.T) {
	long := "This single sentence is far longer than the configured limit allows."
	chunks, err := Split("Short. "+long+" Tail.", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, c := range chunks {
		if c == long {
			found = true
		}
	}
	if !found {
		t.Errorf("expected oversized sentence to be emitted whole, got %q", chunks)
	}
}

func TestSplit_OnlyUnsplittableSentencesExceedMax(t *testing.T) {
	text := "Alpha beta gamma delta. Epsilon zeta.\n\n" +
		strings.Repeat("word ", 30) + "end.\n\n" +
		"Short one. Short two. Short three."
	const maxSize = 30
	chunks, err := Split(text, maxSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if len([]rune(c)) > maxSize && len(splitSentences(c)) != 1 {
			t.Errorf("chunk %d exceeds max and is splittable: %q", i, c)
		}
	}
}

func TestSplit_CountsRunes(t *testing.T) {
	// 6 runes, 12 bytes each.
	chunks, err := Split("привет\n\nмирмир", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk when measuring runes, got %q", chunks)
	}
}

func TestSplit_SkipsEmptyPieces(t *testing.T) {
	chunks, err := Split("  \n\n\n\n   ", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %q", chunks)
	}
}

func TestSplit_InvalidMaxSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Split("text", size); !errors.Is(err, ErrInvalidMaxSize) {
			t.Errorf("size %d: expected ErrInvalidMaxSize, got %v", size, err)
		}
	}
}
