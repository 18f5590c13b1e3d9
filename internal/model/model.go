// Package model defines the capability-provider interfaces the pipeline
// consumes for on-device summarization, translation, and language detection.
// Providers are injected at construction time so tests can substitute fakes.
package model

import (
	"context"

	"golang.org/x/text/language"
)

// Availability is the single tagged enumeration for model readiness. The
// informal status strings used by host runtimes ("readily", "after-download",
// "downloadable", ...) are mapped to these values at the provider boundary
// and never re-interpreted downstream.
type Availability int

const (
	// Ready means the model can serve immediately.
	Ready Availability = iota
	// NeedsDownload means the model is supported but must be fetched on
	// first use; Create will block while the download runs.
	NeedsDownload
	// Unavailable means the model exists but cannot serve right now.
	Unavailable
	// Unsupported means the host cannot provide this capability at all.
	Unsupported
)

func (a Availability) String() string {
	switch a {
	case Ready:
		return "ready"
	case NeedsDownload:
		return "needs-download"
	case Unavailable:
		return "unavailable"
	case Unsupported:
		return "unsupported"
	}
	return "unknown"
}

// SummarizeConfig configures a summarization session.
type SummarizeConfig struct {
	// Verbosity is a length hint: "brief", "standard", or "detailed".
	Verbosity string
	// SharedContext is prepended to every call in the session, typically a
	// one-line description of the document being simplified.
	SharedContext string
	// OnProgress, when non-nil, receives fractional download progress in
	// [0,1] while a first-use model download is running.
	OnProgress func(fraction float64)
}

// SummarizeSession is a live handle to the summarization model. Sessions are
// single-owner and must be destroyed when the caller is done.
type SummarizeSession interface {
	// Summarize condenses text. extraContext carries per-call hints such as
	// the chunk position within a larger document; it may be empty.
	Summarize(ctx context.Context, text string, extraContext string) (string, error)
	// Ask answers a follow-up question against the session's shared context.
	Ask(ctx context.Context, question string) (string, error)
	Destroy()
}

// SummarizerProvider creates summarization sessions.
type SummarizerProvider interface {
	Availability(ctx context.Context) (Availability, error)
	Create(ctx context.Context, cfg SummarizeConfig) (SummarizeSession, error)
}

// InputQuotaReporter is an optional capability of a SummarizerProvider that
// reports the model's maximum input size in characters. Zero means unknown;
// callers fall back to a conservative default. Detect with a type assertion.
type InputQuotaReporter interface {
	InputQuota() int
}

// Translator translates text between the language pair it was created for.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Destroy()
}

// TranslatorProvider creates translators for a source/target pair.
type TranslatorProvider interface {
	Availability(ctx context.Context, source, target language.Tag) (Availability, error)
	Create(ctx context.Context, source, target language.Tag) (Translator, error)
}

// Detection is one ranked guess from a language detector.
type Detection struct {
	// Code is a lowercase ISO 639-1 code such as "en".
	Code       string
	Confidence float64
}

// LanguageDetector returns ranked language guesses for a text, best first.
type LanguageDetector interface {
	Detect(text string) []Detection
}
