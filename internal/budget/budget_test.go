package budget

import "testing"

func TestEstimateTokensFromChars(t *testing.T) {
	cases := []struct {
		chars, want int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{4, 1},
		{5, 2},
		{4000, 1000},
	}
	for _, tc := range cases {
		if got := EstimateTokensFromChars(tc.chars); got != tc.want {
			t.Errorf("EstimateTokensFromChars(%d) = %d, want %d", tc.chars, got, tc.want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("EstimateTokens = %d, want 2", got)
	}
}

func TestMaxChunkChars(t *testing.T) {
	if got := MaxChunkChars(0); got != DefaultMaxChunkChars {
		t.Errorf("unknown quota: got %d, want default %d", got, DefaultMaxChunkChars)
	}
	if got := MaxChunkChars(-1); got != DefaultMaxChunkChars {
		t.Errorf("negative quota: got %d", got)
	}
	if got := MaxChunkChars(1000); got != 900 {
		t.Errorf("headroom: got %d, want 900", got)
	}
	if got := MaxChunkChars(5); got < 1 {
		t.Errorf("tiny quota collapsed to %d", got)
	}
}
