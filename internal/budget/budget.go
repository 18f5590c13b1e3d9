// Package budget converts model input quotas into character budgets for the
// chunking summarizer.
package budget

import "math"

// DefaultMaxChunkChars is the conservative chunk budget used when the model
// does not report an input quota.
const DefaultMaxChunkChars = 4000

// charsPerToken is a conservative English-text heuristic (~4 chars/token).
const charsPerToken = 4

// EstimateTokensFromChars converts a character count into an estimated token
// count. The result is at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / charsPerToken))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// MaxChunkChars derives the per-chunk character budget from a model's
// reported input quota in characters. A tenth is held back as headroom for
// the prompt framing around each chunk; unknown quotas fall back to the
// conservative default.
func MaxChunkChars(inputQuotaChars int) int {
	if inputQuotaChars <= 0 {
		return DefaultMaxChunkChars
	}
	budget := inputQuotaChars - inputQuotaChars/10
	if budget < 1 {
		budget = 1
	}
	return budget
}
