// Package summarize produces a simplified summary of arbitrarily long legal
// text under a model input budget, by split-summarize-merge recursion.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/keanesc/legal-lens/internal/budget"
	"github.com/keanesc/legal-lens/internal/chunk"
	"github.com/keanesc/legal-lens/internal/model"
)

// Status is the outcome classification of one summarization request.
type Status int

const (
	StatusReady Status = iota
	StatusDownloadedAndReady
	StatusUnavailable
	StatusUnsupported
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusDownloadedAndReady:
		return "downloaded-and-ready"
	case StatusUnavailable:
		return "unavailable"
	case StatusUnsupported:
		return "unsupported"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Artifact is the ephemeral result handed back to the caller. Callers persist
// it if desired. On StatusError, Cause carries a human-readable reason and
// Summary is empty; no partial summary is ever returned.
type Artifact struct {
	Summary string
	Status  Status
	Cause   string
}

// DefaultMaxDepth caps the summarize-merge recursion. When a level fails to
// shrink the text, the cap converts a potential infinite loop into a
// truncated result.
const DefaultMaxDepth = 8

// Summarizer runs the chunking recursion against an injected provider.
type Summarizer struct {
	Provider      model.SummarizerProvider
	Verbosity     string
	SharedContext string
	// MaxChunkChars overrides the character budget; zero derives it from the
	// provider's reported input quota or the conservative default.
	MaxChunkChars int
	Overlap       int
	MaxDepth      int
	// OnProgress forwards fractional model-download progress to the caller.
	OnProgress func(float64)
}

// Summarize runs one request end to end. Expected failures (model missing,
// empty input, model-call errors) come back as typed artifacts, never as
// panics or partial summaries.
func (s *Summarizer) Summarize(ctx context.Context, text string) Artifact {
	if strings.TrimSpace(text) == "" {
		return Artifact{Status: StatusError, Cause: "empty input text"}
	}
	if s.Provider == nil {
		return Artifact{Status: StatusUnsupported}
	}
	avail, err := s.Provider.Availability(ctx)
	if err != nil {
		return Artifact{Status: StatusError, Cause: fmt.Sprintf("availability check: %v", err)}
	}
	switch avail {
	case model.Unavailable:
		return Artifact{Status: StatusUnavailable}
	case model.Unsupported:
		return Artifact{Status: StatusUnsupported}
	}
	session, err := s.Provider.Create(ctx, model.SummarizeConfig{
		Verbosity:     s.Verbosity,
		SharedContext: s.SharedContext,
		OnProgress:    s.OnProgress,
	})
	if err != nil {
		return Artifact{Status: StatusError, Cause: fmt.Sprintf("create session: %v", err)}
	}
	defer session.Destroy()

	out, err := s.reduce(ctx, session, text, 0)
	if err != nil {
		return Artifact{Status: StatusError, Cause: err.Error()}
	}
	status := StatusReady
	if avail == model.NeedsDownload {
		status = StatusDownloadedAndReady
	}
	return Artifact{Summary: out, Status: status}
}

// reduce summarizes text directly when it fits, otherwise summarizes each
// chunk sequentially in order, joins the partials with newlines, and recurses
// on the joined result. Work is bounded by the depth cap regardless of input.
func (s *Summarizer) reduce(ctx context.Context, session model.SummarizeSession, text string, depth int) (string, error) {
	maxLen := s.chunkBudget()
	if len(text) <= maxLen {
		return session.Summarize(ctx, text, "")
	}
	if depth >= s.maxDepth() {
		log.Warn().Int("depth", depth).Int("chars", len(text)).
			Msg("summary did not converge; truncating")
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return strings.TrimSpace(text[:cut]), nil
	}
	overlap := s.Overlap
	if overlap <= 0 {
		overlap = chunk.DefaultOverlap
	}
	parts := chunk.Split(text, maxLen, overlap)
	log.Debug().Int("depth", depth).Int("chunks", len(parts)).Msg("summarizing chunks")
	partials := make([]string, 0, len(parts))
	for i, p := range parts {
		hint := fmt.Sprintf("This is part %d of %d of a longer document.", i+1, len(parts))
		partial, err := session.Summarize(ctx, p, hint)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(parts), err)
		}
		partials = append(partials, partial)
	}
	return s.reduce(ctx, session, strings.Join(partials, "\n"), depth+1)
}

func (s *Summarizer) chunkBudget() int {
	if s.MaxChunkChars > 0 {
		return s.MaxChunkChars
	}
	if q, ok := s.Provider.(model.InputQuotaReporter); ok {
		return budget.MaxChunkChars(q.InputQuota())
	}
	return budget.DefaultMaxChunkChars
}

func (s *Summarizer) maxDepth() int {
	if s.MaxDepth > 0 {
		return s.MaxDepth
	}
	return DefaultMaxDepth
}
