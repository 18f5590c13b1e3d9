// Package verify decides whether fetched HTML is plausibly a legal document.
// The classifier is a presence threshold over a fixed term list, not a
// probabilistic model: a document qualifies when enough distinct legal terms
// appear in enough cleaned text.
package verify

import (
	"strings"

	"github.com/keanesc/legal-lens/internal/extract"
)

// Document is the deterministic verification result for one fetched page.
type Document struct {
	URL               string
	Title             string
	CleanText         string
	KeywordMatchCount int
	// Confidence is 100 * distinct terms present / total terms in the list.
	Confidence      int
	IsLegalDocument bool
}

// DefaultLegalTerms is the distinct-term vocabulary scanned for presence.
// Scanning checks presence only, never counts occurrences.
var DefaultLegalTerms = []string{
	"terms of service",
	"terms of use",
	"privacy policy",
	"liability",
	"indemnify",
	"indemnification",
	"disclaimer",
	"governing law",
	"arbitration",
	"warranty",
	"termination",
	"intellectual property",
	"personal data",
	"severability",
	"jurisdiction",
}

const (
	// DefaultMinTermMatches is how many distinct terms must be present.
	DefaultMinTermMatches = 3
	// DefaultMinDocumentChars rejects pages whose cleaned text is too short
	// to be a real legal document.
	DefaultMinDocumentChars = 500
)

// Verifier classifies fetched HTML. The zero value is not usable; call New
// or fill the fields, which exist so the heuristic constants stay tunable.
type Verifier struct {
	Terms          []string
	MinTermMatches int
	MinChars       int
}

// New returns a Verifier with the default term list and thresholds.
func New() *Verifier {
	return &Verifier{
		Terms:          DefaultLegalTerms,
		MinTermMatches: DefaultMinTermMatches,
		MinChars:       DefaultMinDocumentChars,
	}
}

// Verify extracts clean text from rawHTML and classifies it. Parsing failures
// yield a non-legal Document rather than an error; a page that cannot be read
// is simply not a legal document.
func (v *Verifier) Verify(url string, rawHTML []byte) Document {
	doc, err := extract.FromHTML(rawHTML)
	if err != nil {
		return Document{URL: url}
	}
	out := Document{URL: url, Title: doc.Title, CleanText: doc.Text}
	if len(out.CleanText) < v.MinChars {
		// Too short to be a real legal document, regardless of keywords.
		return out
	}
	haystack := strings.ToLower(out.CleanText)
	for _, term := range v.Terms {
		if strings.Contains(haystack, term) {
			out.KeywordMatchCount++
		}
	}
	if len(v.Terms) > 0 {
		out.Confidence = 100 * out.KeywordMatchCount / len(v.Terms)
	}
	out.IsLegalDocument = out.KeywordMatchCount >= v.MinTermMatches
	return out
}
