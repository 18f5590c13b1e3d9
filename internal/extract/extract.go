// Package extract turns raw HTML into the clean text the legal-document
// classifier operates on.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is the extracted page content.
type Document struct {
	Title string
	Text  string
}

// strippedSelectors are removed wholesale before any text is collected.
var strippedSelectors = []string{
	"script", "style", "nav", "header", "footer", "iframe", "noscript",
}

// contentRootSelectors are probed in order; the first that matches becomes
// the content root. Body is the final fallback.
var contentRootSelectors = []string{
	"main",
	"article",
	"[role=main]",
	"#content",
	"#main",
	".content",
	".main-content",
	".page-content",
	"body",
}

// FromHTML parses HTML, strips boilerplate subtrees, probes for a content
// root, and returns the root's text with all whitespace runs collapsed to
// single spaces.
func FromHTML(input []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}, err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sel := range strippedSelectors {
		doc.Find(sel).Remove()
	}
	var root *goquery.Selection
	for _, sel := range contentRootSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			root = s
			break
		}
	}
	if root == nil {
		return Document{Title: title}, nil
	}
	return Document{Title: title, Text: CollapseWhitespace(root.Text())}, nil
}

// CollapseWhitespace reduces every whitespace run to a single space and trims
// the ends.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}
