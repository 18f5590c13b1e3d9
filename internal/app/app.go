// Package app wires the extraction pipeline to the model backend, the
// persistence layer, and the caches, and serves the request boundary the
// messenger delivers to.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"

	"github.com/keanesc/legal-lens/internal/cache"
	"github.com/keanesc/legal-lens/internal/extractor"
	"github.com/keanesc/legal-lens/internal/fetch"
	"github.com/keanesc/legal-lens/internal/messenger"
	"github.com/keanesc/legal-lens/internal/model"
	"github.com/keanesc/legal-lens/internal/popup"
	"github.com/keanesc/legal-lens/internal/report"
	"github.com/keanesc/legal-lens/internal/store"
	"github.com/keanesc/legal-lens/internal/summarize"
	"github.com/keanesc/legal-lens/internal/verify"
)

// ExtractPayload is the payload of an EXTRACT_AND_SIMPLIFY request.
type ExtractPayload struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// AskPayload is the payload of an ASK_QUESTION request.
type AskPayload struct {
	Question string `json:"question"`
}

// App composes the pipeline. It implements messenger.Transport so callers can
// wrap it in a retrying Messenger.
type App struct {
	cfg      Config
	provider *model.OpenAIProvider
	detector model.LanguageDetector
	fetcher  *fetch.Client
	verifier *verify.Verifier
	store    *store.Store

	summaryCache *cache.SummaryCache

	mu        sync.Mutex
	detectors map[string]*popup.Detector
}

// New builds the application from configuration. The model endpoint is probed
// best-effort; an unreachable endpoint surfaces later as an unavailable
// summary, not a startup failure.
func New(ctx context.Context, cfg Config) (*App, error) {
	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	client := openai.NewClientWithConfig(transportCfg)

	a := &App{
		cfg: cfg,
		provider: &model.OpenAIProvider{
			Client:        client,
			Model:         cfg.LLMModel,
			MaxInputChars: cfg.MaxInputChars,
		},
		detector:  model.NewLinguaDetector(),
		verifier:  verify.New(),
		detectors: map[string]*popup.Detector{},
	}

	var httpCache *cache.HTTPCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			_, _ = cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
			_, _ = cache.PurgeSummaryCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		httpCache = &cache.HTTPCache{Dir: cfg.CacheDir}
		a.summaryCache = &cache.SummaryCache{Dir: cfg.CacheDir}
	}
	a.fetcher = &fetch.Client{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       3,
		PerRequestTimeout: 20 * time.Second,
		Cache:             httpCache,
	}

	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
	}

	// Preflight the model endpoint so misconfiguration shows up in logs
	// immediately rather than on the first user request.
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	avail, err := a.provider.Availability(pctx)
	if err != nil {
		log.Warn().Err(err).Msg("model availability check failed; continuing")
	} else {
		log.Info().Stringer("availability", avail).Str("model", cfg.LLMModel).Msg("model endpoint probed")
	}
	return a, nil
}

// Close releases held resources.
func (a *App) Close() error {
	a.mu.Lock()
	for id, d := range a.detectors {
		d.Stop()
		delete(a.detectors, id)
	}
	a.mu.Unlock()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// DetectorFor returns the popup detector for a page context, creating one in
// the Idle state on first use.
func (a *App) DetectorFor(contextID string) *popup.Detector {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.detectors[contextID]
	if !ok {
		d = popup.NewDetector(popup.Config{MinTextChars: a.cfg.MinTextChars})
		a.detectors[contextID] = d
	}
	return d
}

// ReleaseContext drops per-context state when a page context goes away.
func (a *App) ReleaseContext(contextID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.detectors[contextID]; ok {
		d.Stop()
		delete(a.detectors, contextID)
	}
}

// Send implements messenger.Transport by dispatching to HandleRequest.
func (a *App) Send(ctx context.Context, req messenger.Request) (messenger.Response, error) {
	return a.HandleRequest(ctx, req), nil
}

// HandleRequest serves one request from the boundary. Expected pipeline
// failures come back in the response body; only malformed requests are
// reported as unsuccessful.
func (a *App) HandleRequest(ctx context.Context, req messenger.Request) messenger.Response {
	switch req.Type {
	case messenger.RequestExtractAndSimplify:
		return a.handleExtract(ctx, req)
	case messenger.RequestAsk:
		return a.handleAsk(ctx, req)
	default:
		return messenger.Response{Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

func (a *App) handleExtract(ctx context.Context, req messenger.Request) messenger.Response {
	var payload ExtractPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return messenger.Response{Error: fmt.Sprintf("decode payload: %v", err)}
	}
	pageURL, err := url.Parse(payload.URL)
	if err != nil {
		return messenger.Response{Error: fmt.Sprintf("parse page url: %v", err)}
	}

	orch := &extractor.Orchestrator{
		Fetcher:      a.fetcher,
		Verifier:     a.verifier,
		Detector:     a.DetectorFor(req.ContextID),
		Keywords:     a.cfg.LinkKeywords,
		MinTextChars: a.cfg.MinTextChars,
	}
	result := orch.Extract(ctx, extractor.Page{URL: pageURL, HTML: []byte(payload.HTML)})
	if result.Source == extractor.SourceNone {
		return messenger.Response{
			Success: true,
			Status:  "no-document",
			Source:  string(result.Source),
			URL:     result.URL,
		}
	}

	artifact := a.summarizeCached(ctx, result.Text)
	if artifact.Status == summarizeError {
		return messenger.Response{
			Status: artifact.Status,
			Source: string(result.Source),
			URL:    result.URL,
			Error:  artifact.Cause,
		}
	}
	summary := a.maybeTranslate(ctx, artifact.Summary)

	if a.store != nil {
		err := a.store.SaveLatest(ctx, store.Record{
			ContextID:  req.ContextID,
			SourceKind: string(result.Source),
			URL:        result.URL,
			Summary:    summary,
			Status:     artifact.Status,
		})
		if err != nil {
			log.Warn().Err(err).Str("context", req.ContextID).Msg("persist summary failed")
		}
	}
	return messenger.Response{
		Success: true,
		Status:  artifact.Status,
		Summary: summary,
		Source:  string(result.Source),
		URL:     result.URL,
	}
}

func (a *App) handleAsk(ctx context.Context, req messenger.Request) messenger.Response {
	var payload AskPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return messenger.Response{Error: fmt.Sprintf("decode payload: %v", err)}
	}
	shared := a.cfg.SharedContext
	if a.store != nil {
		if rec, err := a.store.Latest(ctx, req.ContextID); err == nil {
			shared = rec.Summary
		}
	}
	session, err := a.provider.Create(ctx, model.SummarizeConfig{
		Verbosity:     a.cfg.Verbosity,
		SharedContext: shared,
	})
	if err != nil {
		return messenger.Response{Error: fmt.Sprintf("create session: %v", err)}
	}
	defer session.Destroy()
	answer, err := session.Ask(ctx, payload.Question)
	if err != nil {
		return messenger.Response{Error: fmt.Sprintf("ask: %v", err)}
	}
	return messenger.Response{Success: true, Status: "ready", Summary: answer}
}

const summarizeError = "error"

type summaryArtifact struct {
	Summary string
	Status  string
	Cause   string
}

func (a *App) newSummarizer() *summarize.Summarizer {
	return &summarize.Summarizer{
		Provider:      a.provider,
		Verbosity:     a.cfg.Verbosity,
		SharedContext: a.cfg.SharedContext,
	}
}

func (a *App) summarizeCached(ctx context.Context, text string) summaryArtifact {
	var key string
	if a.summaryCache != nil {
		key = cache.KeyFrom(a.cfg.LLMModel, text)
		if b, ok, _ := a.summaryCache.Get(ctx, key); ok {
			log.Debug().Str("key", key).Msg("summary cache hit")
			return summaryArtifact{Summary: string(b), Status: "ready"}
		}
	}
	s := a.newSummarizer()
	art := s.Summarize(ctx, text)
	out := summaryArtifact{Summary: art.Summary, Status: art.Status.String(), Cause: art.Cause}
	if a.summaryCache != nil && art.Summary != "" {
		_ = a.summaryCache.Save(ctx, key, []byte(art.Summary))
	}
	return out
}

// SaveSummary appends a summary to the persistent saved list. When an earlier
// save exists for the same URL, the flat line diff against it is logged so
// changed terms are visible.
func (a *App) SaveSummary(ctx context.Context, url, title, summary string) error {
	if a.store == nil {
		return errors.New("no store configured")
	}
	saved, err := a.store.ListSaved(ctx)
	if err != nil {
		return fmt.Errorf("list saved: %w", err)
	}
	for _, prev := range saved {
		if prev.URL != url {
			continue
		}
		added, removed := store.Compare(prev.Summary, summary)
		log.Info().Str("url", url).Time("previous", prev.CreatedAt).
			Int("added", len(added)).Int("removed", len(removed)).
			Msg("summary compared against last save")
		break
	}
	if _, err := a.store.AppendSaved(ctx, url, title, summary); err != nil {
		return fmt.Errorf("append saved: %w", err)
	}
	return nil
}

// SavedSummaries lists saved summaries, newest first.
func (a *App) SavedSummaries(ctx context.Context) ([]store.Saved, error) {
	if a.store == nil {
		return nil, errors.New("no store configured")
	}
	return a.store.ListSaved(ctx)
}

// maybeTranslate translates the summary into the configured target language
// when the detected summary language differs. Translation is best-effort: any
// failure keeps the untranslated summary.
func (a *App) maybeTranslate(ctx context.Context, summary string) string {
	if a.cfg.TargetLanguage == "" || summary == "" {
		return summary
	}
	target, err := language.Parse(a.cfg.TargetLanguage)
	if err != nil {
		log.Warn().Err(err).Str("tag", a.cfg.TargetLanguage).Msg("bad target language; skipping translation")
		return summary
	}
	detections := a.detector.Detect(summary)
	if len(detections) == 0 {
		return summary
	}
	source, err := language.Parse(detections[0].Code)
	if err != nil {
		return summary
	}
	targetBase, _ := target.Base()
	sourceBase, _ := source.Base()
	if targetBase == sourceBase {
		return summary
	}
	tp := a.provider.AsTranslatorProvider()
	avail, err := tp.Availability(ctx, source, target)
	if err != nil || (avail != model.Ready && avail != model.NeedsDownload) {
		log.Warn().Stringer("availability", avail).Msg("translator not available; delivering untranslated")
		return summary
	}
	tr, err := tp.Create(ctx, source, target)
	if err != nil {
		log.Warn().Err(err).Msg("create translator failed; delivering untranslated")
		return summary
	}
	defer tr.Destroy()
	out, err := tr.Translate(ctx, summary)
	if err != nil {
		log.Warn().Err(err).Msg("translation failed; delivering untranslated")
		return summary
	}
	return out
}

// Run drives one headless extraction for the CLI: fetch the page, run the
// fallback chain, summarize, and write the artifacts out. With save set the
// summary is also appended to the persistent saved list.
func (a *App) Run(ctx context.Context, pageURL, outPath, pdfPath string, save bool) error {
	body, _, err := a.fetcher.Get(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	payload, _ := json.Marshal(ExtractPayload{URL: pageURL, HTML: string(body)})
	m := &messenger.Messenger{Transport: a}
	resp, err := m.Send(ctx, messenger.Request{
		Type:      messenger.RequestExtractAndSimplify,
		ContextID: "cli",
		Payload:   payload,
	})
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("pipeline: %s", resp.Error)
	}
	if resp.Summary == "" {
		log.Info().Str("status", resp.Status).Str("source", resp.Source).Msg("no summary produced")
		return nil
	}
	log.Info().Str("source", resp.Source).Str("url", resp.URL).Msg("summary ready")
	if save {
		if err := a.SaveSummary(ctx, resp.URL, "", resp.Summary); err != nil {
			return fmt.Errorf("save summary: %w", err)
		}
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(resp.Summary+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if pdfPath != "" {
		if err := report.WritePDF("Simplified summary", resp.URL, resp.Summary, pdfPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	return nil
}
