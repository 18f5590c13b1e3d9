// Package chunk splits long text into overlapping windows sized to a model
// input budget. Consecutive chunks overlap so sentences severed at a cut
// reappear whole in the next window.
package chunk

import "strings"

// DefaultOverlap is the character overlap between consecutive chunks.
const DefaultOverlap = 200

// Split cuts text into chunks of at most maxLen characters with the given
// overlap. Cuts prefer the nearest sentence-terminating period before the
// proposed boundary, falling back to the raw offset when none exists in the
// current window. Joining the chunks (ignoring overlap duplication) covers
// all of the input with no gaps.
func Split(text string, maxLen, overlap int) []string {
	if maxLen <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxLen {
		overlap = maxLen / 2
	}
	if len(text) <= maxLen {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxLen
		if end >= len(text) {
			end = len(text)
		} else {
			if cut := strings.LastIndexByte(text[start:end], '.'); cut >= 0 {
				end = start + cut + 1
			}
		}
		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, piece)
		}
		if end >= len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			// Guarantee forward progress even when the period search moved
			// the cut back into the overlap region.
			next = end
		}
		start = next
	}
	return chunks
}
