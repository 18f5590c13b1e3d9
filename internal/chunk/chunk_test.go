package chunk

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	got := Split("  short text.  ", 100, DefaultOverlap)
	if len(got) != 1 || got[0] != "short text." {
		t.Fatalf("got %#v", got)
	}
}

func TestSplitEmptyText(t *testing.T) {
	if got := Split("   ", 100, 10); got != nil {
		t.Fatalf("expected nil for blank input, got %#v", got)
	}
	if got := Split("text", 0, 10); got != nil {
		t.Fatalf("expected nil for non-positive maxLen, got %#v", got)
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	text := "First sentence. Second sentence. " + strings.Repeat("x", 100)
	got := Split(text, 40, 5)
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %#v", got)
	}
	if !strings.HasSuffix(got[0], ".") {
		t.Errorf("first chunk does not end at a sentence boundary: %q", got[0])
	}
}

func TestSplitRespectsMaxLen(t *testing.T) {
	text := strings.Repeat("word. ", 500)
	for _, c := range Split(text, 80, 20) {
		if len(c) > 80 {
			t.Fatalf("chunk exceeds budget: %d chars", len(c))
		}
	}
}

func TestSplitCoversInputWithoutGaps(t *testing.T) {
	// Periodless input forces raw-offset cuts, making coverage easy to check:
	// stripping the overlap from each later chunk must reconstruct the input.
	text := strings.Repeat("abcdefghij", 50)
	maxLen, overlap := 100, 20
	chunks := Split(text, maxLen, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		rebuilt.WriteString(c[overlap:])
	}
	if rebuilt.String() != text {
		t.Fatalf("rebuilt text does not match input: %d vs %d chars", rebuilt.Len(), len(text))
	}
}

func TestSplitConsecutiveChunksOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50)
	chunks := Split(text, 100, 20)
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1][len(chunks[i-1])-20:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not begin with the previous tail", i)
		}
	}
}

func TestSplitForwardProgressWithDensePeriods(t *testing.T) {
	// Periods everywhere pull the cut backward; the guard must still
	// terminate and cover the input.
	text := strings.Repeat(".", 300)
	chunks := Split(text, 50, 45)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total < len(text) {
		t.Errorf("chunks cover %d of %d chars", total, len(text))
	}
}

func TestSplitOverlapAtLeastHalvedWhenTooLarge(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30)
	// overlap >= maxLen would stall; Split clamps it.
	chunks := Split(text, 50, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
}
