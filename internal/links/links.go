// Package links scores anchor elements by how likely they are to lead to a
// Terms-of-Service, Privacy-Policy, or similar legal document.
package links

import (
	"bytes"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Anchor is the raw material extracted from one <a> element.
type Anchor struct {
	Href      string
	Text      string
	Title     string
	AriaLabel string
}

// Candidate is a scored link. Confidence is a bounded 0-100 strength-of-match
// value, not a calibrated probability.
type Candidate struct {
	URL            string
	DisplayText    string
	Confidence     int
	MatchedKeyword string
}

// DefaultKeywords are checked in order; the first keyword that matches a link
// sets its confidence. Order therefore encodes priority.
var DefaultKeywords = []string{
	"terms of service",
	"terms of use",
	"terms and conditions",
	"privacy policy",
	"privacy notice",
	"cookie policy",
	"end user license agreement",
	"eula",
	"acceptable use policy",
	"legal notice",
	"terms",
	"privacy",
	"legal",
}

// Score tiers. Exact link-text match beats substring match beats
// attribute-only match; a URL slug match floors the score at 70.
const (
	scoreExactText  = 100
	scoreTextSub    = 85
	scoreAttribute  = 65
	scoreURLMinimum = 70
)

// AnchorsFromHTML walks the document and collects every anchor with an href.
func AnchorsFromHTML(input []byte) []Anchor {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return nil
	}
	var anchors []Anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			a := Anchor{Text: strings.TrimSpace(innerText(n))}
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "href":
					a.Href = strings.TrimSpace(attr.Val)
				case "title":
					a.Title = attr.Val
				case "aria-label":
					a.AriaLabel = attr.Val
				}
			}
			if a.Href != "" {
				anchors = append(anchors, a)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return anchors
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Score ranks anchors against the keyword list. Relative hrefs are resolved
// against base. Zero-score links are dropped, the rest sorted descending by
// confidence with discovery order preserved on ties.
func Score(anchors []Anchor, base *url.URL, keywords []string) []Candidate {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	out := make([]Candidate, 0, len(anchors))
	for _, a := range anchors {
		abs, ok := resolve(a.Href, base)
		if !ok {
			continue
		}
		conf, kw := scoreOne(a, abs, keywords)
		if conf <= 0 {
			continue
		}
		out = append(out, Candidate{
			URL:            abs.String(),
			DisplayText:    a.Text,
			Confidence:     conf,
			MatchedKeyword: kw,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// scoreOne applies the tiered match for the first keyword that hits anything.
// This is deliberately first-match-wins in keyword-list order, not
// best-of-all-matches.
func scoreOne(a Anchor, abs *url.URL, keywords []string) (int, string) {
	text := strings.ToLower(strings.TrimSpace(a.Text))
	attrs := strings.ToLower(a.Title + " " + a.AriaLabel)
	path := strings.ToLower(abs.Path)
	for _, kw := range keywords {
		score := 0
		switch {
		case text == kw:
			score = scoreExactText
		case strings.Contains(text, kw):
			score = scoreTextSub
		case strings.Contains(attrs, kw):
			score = scoreAttribute
		}
		if slugMatch(path, kw) && score < scoreURLMinimum {
			score = scoreURLMinimum
		}
		if score > 0 {
			return score, kw
		}
	}
	return 0, ""
}

// slugMatch reports whether the keyword appears in the URL path as a slug,
// underscored, or concatenated form.
func slugMatch(path, kw string) bool {
	if !strings.Contains(kw, " ") {
		return strings.Contains(path, kw)
	}
	for _, sep := range []string{"-", "_", ""} {
		if strings.Contains(path, strings.ReplaceAll(kw, " ", sep)) {
			return true
		}
	}
	return false
}

// resolve rejects javascript:/mailto:/fragment-only hrefs and makes the rest
// absolute against base.
func resolve(href string, base *url.URL) (*url.URL, bool) {
	if href == "" || href == "#" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return nil, false
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}
