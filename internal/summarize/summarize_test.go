package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/keanesc/legal-lens/internal/model"
)

// fakeProvider serves a scripted session for tests.
type fakeProvider struct {
	avail     model.Availability
	availErr  error
	createErr error
	session   *fakeSession
	quota     int
}

func (p *fakeProvider) Availability(context.Context) (model.Availability, error) {
	return p.avail, p.availErr
}

func (p *fakeProvider) Create(_ context.Context, cfg model.SummarizeConfig) (model.SummarizeSession, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	if cfg.OnProgress != nil {
		cfg.OnProgress(1)
	}
	return p.session, nil
}

func (p *fakeProvider) InputQuota() int { return p.quota }

type fakeSession struct {
	// summarize maps input to output; nil means echo a fixed short string.
	summarize func(text, extra string) (string, error)
	calls     int
	inputs    []string
	destroyed bool
}

func (s *fakeSession) Summarize(_ context.Context, text, extra string) (string, error) {
	s.calls++
	s.inputs = append(s.inputs, text)
	if s.summarize != nil {
		return s.summarize(text, extra)
	}
	return "summary", nil
}

func (s *fakeSession) Ask(context.Context, string) (string, error) { return "answer", nil }
func (s *fakeSession) Destroy()                                    { s.destroyed = true }

func TestSummarizeShortTextSingleCall(t *testing.T) {
	session := &fakeSession{}
	s := &Summarizer{Provider: &fakeProvider{avail: model.Ready, session: session}, MaxChunkChars: 100}
	art := s.Summarize(context.Background(), "short legal text.")
	if art.Status != StatusReady {
		t.Fatalf("status = %v (%s)", art.Status, art.Cause)
	}
	if art.Summary != "summary" {
		t.Errorf("summary = %q", art.Summary)
	}
	if session.calls != 1 {
		t.Errorf("model called %d times, want 1", session.calls)
	}
	if !session.destroyed {
		t.Errorf("session not destroyed")
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := &Summarizer{Provider: &fakeProvider{avail: model.Ready, session: &fakeSession{}}}
	art := s.Summarize(context.Background(), "   \n ")
	if art.Status != StatusError || art.Summary != "" {
		t.Fatalf("expected error artifact, got %+v", art)
	}
}

func TestSummarizeChunksLongInput(t *testing.T) {
	session := &fakeSession{}
	s := &Summarizer{
		Provider:      &fakeProvider{avail: model.Ready, session: session},
		MaxChunkChars: 100,
		Overlap:       10,
	}
	art := s.Summarize(context.Background(), strings.Repeat("clause text ", 50))
	if art.Status != StatusReady {
		t.Fatalf("status = %v (%s)", art.Status, art.Cause)
	}
	if session.calls < 3 {
		t.Errorf("expected per-chunk calls plus a merge, got %d", session.calls)
	}
	// The final call merges the short partials and fits the budget.
	last := session.inputs[len(session.inputs)-1]
	if len(last) > 100 {
		t.Errorf("merge input exceeds budget: %d chars", len(last))
	}
}

func TestSummarizeDepthCapTruncates(t *testing.T) {
	// A session that never shrinks its input would recurse forever without
	// the depth cap.
	session := &fakeSession{summarize: func(text, _ string) (string, error) {
		return text, nil
	}}
	s := &Summarizer{
		Provider:      &fakeProvider{avail: model.Ready, session: session},
		MaxChunkChars: 50,
		Overlap:       5,
		MaxDepth:      3,
	}
	art := s.Summarize(context.Background(), strings.Repeat("abcdefghij", 40))
	if art.Status != StatusReady {
		t.Fatalf("status = %v (%s)", art.Status, art.Cause)
	}
	if len(art.Summary) > 50 {
		t.Errorf("truncated summary exceeds budget: %d chars", len(art.Summary))
	}
}

func TestDepthCapTruncationRespectsRuneBoundaries(t *testing.T) {
	s := &Summarizer{
		Provider:      &fakeProvider{avail: model.Ready, session: &fakeSession{}},
		MaxChunkChars: 51,
		MaxDepth:      1,
	}
	// Two-byte runes at even offsets put the odd byte budget mid-rune.
	out, err := s.reduce(context.Background(), &fakeSession{}, strings.Repeat("ä", 100), 1)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if !utf8.ValidString(out) {
		t.Errorf("truncated text is not valid UTF-8: %q", out)
	}
	if len(out) == 0 || len(out) > 51 {
		t.Errorf("truncated length = %d", len(out))
	}
}

func TestSummarizeModelErrorBecomesArtifact(t *testing.T) {
	session := &fakeSession{summarize: func(string, string) (string, error) {
		return "", errors.New("model exploded")
	}}
	s := &Summarizer{Provider: &fakeProvider{avail: model.Ready, session: session}, MaxChunkChars: 100}
	art := s.Summarize(context.Background(), "short text.")
	if art.Status != StatusError {
		t.Fatalf("status = %v, want error", art.Status)
	}
	if art.Summary != "" {
		t.Errorf("partial summary leaked: %q", art.Summary)
	}
	if !strings.Contains(art.Cause, "model exploded") {
		t.Errorf("cause lost: %q", art.Cause)
	}
}

func TestSummarizeAvailabilityMapping(t *testing.T) {
	cases := []struct {
		avail model.Availability
		want  Status
	}{
		{model.Unavailable, StatusUnavailable},
		{model.Unsupported, StatusUnsupported},
	}
	for _, tc := range cases {
		s := &Summarizer{Provider: &fakeProvider{avail: tc.avail, session: &fakeSession{}}}
		if art := s.Summarize(context.Background(), "text"); art.Status != tc.want {
			t.Errorf("availability %v: status = %v, want %v", tc.avail, art.Status, tc.want)
		}
	}
}

func TestSummarizeNeedsDownloadStatus(t *testing.T) {
	var progress []float64
	s := &Summarizer{
		Provider:   &fakeProvider{avail: model.NeedsDownload, session: &fakeSession{}},
		OnProgress: func(f float64) { progress = append(progress, f) },
	}
	art := s.Summarize(context.Background(), "text to summarize.")
	if art.Status != StatusDownloadedAndReady {
		t.Fatalf("status = %v, want downloaded-and-ready", art.Status)
	}
	if len(progress) == 0 || progress[len(progress)-1] != 1 {
		t.Errorf("download progress did not complete: %v", progress)
	}
}

func TestSummarizeNilProvider(t *testing.T) {
	s := &Summarizer{}
	if art := s.Summarize(context.Background(), "text"); art.Status != StatusUnsupported {
		t.Fatalf("status = %v, want unsupported", art.Status)
	}
}

func TestChunkBudgetFromQuota(t *testing.T) {
	s := &Summarizer{Provider: &fakeProvider{quota: 1000, session: &fakeSession{}}}
	if got := s.chunkBudget(); got != 900 {
		t.Errorf("chunkBudget = %d, want 900", got)
	}
}
