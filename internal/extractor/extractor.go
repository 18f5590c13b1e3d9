// Package extractor produces one best text blob for summarization per
// user-triggered request, with a strict fallback order: a fetched linked
// legal document beats an already-detected popup, which beats a blind scan of
// the current page.
package extractor

import (
	"context"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/keanesc/legal-lens/internal/extract"
	"github.com/keanesc/legal-lens/internal/links"
	"github.com/keanesc/legal-lens/internal/popup"
	"github.com/keanesc/legal-lens/internal/verify"
)

// SourceKind tells the caller where the extracted text came from.
type SourceKind string

const (
	SourceFetchedLink SourceKind = "fetched-link"
	SourcePagePopup   SourceKind = "current-page-popup"
	SourcePageElement SourceKind = "current-page-element"
	// SourceNone signals extraction failure. It is a normal, reportable
	// outcome, not an error.
	SourceNone SourceKind = "none"
)

// Result is the contract handed to the summarization stage.
type Result struct {
	Text     string
	URL      string
	Source   SourceKind
	LinkText string
}

// Fetcher is the privileged fetch collaborator: it retrieves raw HTML for an
// absolute URL without browser-side CORS restriction.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Page is the orchestrator's view of the current page context.
type Page struct {
	URL  *url.URL
	HTML []byte
	// PopupCandidates are the current matches of the common popup selectors
	// in document order, used by the direct scan fallback.
	PopupCandidates []*popup.Element
}

// Orchestrator composes the link scorer, document verifier, and popup
// detector. Each page context holds at most one in-flight extraction; the
// caller serializes requests.
type Orchestrator struct {
	Fetcher  Fetcher
	Verifier *verify.Verifier
	// Detector, when non-nil, supplies the tracked popup for the second
	// fallback step.
	Detector *popup.Detector
	// Keywords overrides the link keyword list; nil uses the default.
	Keywords []string
	// MinTextChars is the minimum extracted-text length for the in-page
	// fallbacks. Zero uses the popup default.
	MinTextChars int
}

// Extract runs the fallback chain and never fails: when nothing legal is
// found anywhere the result carries SourceNone.
func (o *Orchestrator) Extract(ctx context.Context, page Page) Result {
	if r, ok := o.fromLinks(ctx, page); ok {
		return r
	}
	if r, ok := o.fromTrackedPopup(page); ok {
		return r
	}
	if r, ok := o.fromPageScan(page); ok {
		return r
	}
	return Result{Source: SourceNone, URL: pageURL(page)}
}

// fromLinks fetches ranked candidate links until one verifies as a legal
// document. Fetch and verification failures skip to the next candidate; no
// link is retried within a pass.
func (o *Orchestrator) fromLinks(ctx context.Context, page Page) (Result, bool) {
	if o.Fetcher == nil || o.Verifier == nil {
		return Result{}, false
	}
	anchors := links.AnchorsFromHTML(page.HTML)
	for _, c := range links.Score(anchors, page.URL, o.Keywords) {
		body, _, err := o.Fetcher.Get(ctx, c.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", c.URL).Msg("candidate fetch failed; skipping")
			continue
		}
		doc := o.Verifier.Verify(c.URL, body)
		if !doc.IsLegalDocument {
			log.Debug().Str("url", c.URL).Int("matches", doc.KeywordMatchCount).
				Msg("candidate did not verify as legal document")
			continue
		}
		return Result{
			Text:     doc.CleanText,
			URL:      c.URL,
			Source:   SourceFetchedLink,
			LinkText: c.DisplayText,
		}, true
	}
	return Result{}, false
}

func (o *Orchestrator) fromTrackedPopup(page Page) (Result, bool) {
	if o.Detector == nil {
		return Result{}, false
	}
	text := o.Detector.TrackedText()
	if len(text) < o.minTextChars() {
		return Result{}, false
	}
	return Result{Text: text, URL: pageURL(page), Source: SourcePagePopup}, true
}

// fromPageScan applies the popup predicate family directly, without the
// mutation-watch machinery, and takes the first visible match.
func (o *Orchestrator) fromPageScan(page Page) (Result, bool) {
	probe := popup.NewDetector(popup.Config{MinTextChars: o.MinTextChars})
	for _, e := range page.PopupCandidates {
		if !probe.Qualifies(e) {
			continue
		}
		text := extract.CollapseWhitespace(e.Text)
		if len(text) < o.minTextChars() {
			continue
		}
		return Result{Text: text, URL: pageURL(page), Source: SourcePageElement}, true
	}
	return Result{}, false
}

func (o *Orchestrator) minTextChars() int {
	if o.MinTextChars > 0 {
		return o.MinTextChars
	}
	return popup.DefaultMinTextChars
}

func pageURL(page Page) string {
	if page.URL == nil {
		return ""
	}
	return page.URL.String()
}
