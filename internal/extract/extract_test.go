package extract

import (
	"strings"
	"testing"
)

func TestFromHTMLPrefersMainOverBody(t *testing.T) {
	html := []byte(`<html><head><title>Terms</title></head><body>
		<nav>Site navigation</nav>
		<main>The actual terms text.</main>
		<footer>Copyright</footer>
	</body></html>`)
	doc, err := FromHTML(html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if doc.Title != "Terms" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Text != "The actual terms text." {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestFromHTMLProbeOrder(t *testing.T) {
	// #content comes before .content in the probe order.
	html := []byte(`<html><body>
		<div class="content">wrong root</div>
		<div id="content">right root</div>
	</body></html>`)
	doc, err := FromHTML(html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if doc.Text != "right root" {
		t.Errorf("text = %q, want %q", doc.Text, "right root")
	}
}

func TestFromHTMLStripsBoilerplate(t *testing.T) {
	html := []byte(`<html><body>
		<script>var x = 1;</script>
		<style>.a{}</style>
		<iframe src="x"></iframe>
		<noscript>enable js</noscript>
		<p>kept text</p>
	</body></html>`)
	doc, err := FromHTML(html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	for _, leak := range []string{"var x", ".a{}", "enable js"} {
		if strings.Contains(doc.Text, leak) {
			t.Errorf("boilerplate leaked into text: %q", doc.Text)
		}
	}
	if !strings.Contains(doc.Text, "kept text") {
		t.Errorf("content lost: %q", doc.Text)
	}
}

func TestFromHTMLBodyFallback(t *testing.T) {
	doc, err := FromHTML([]byte(`<html><body><p>plain page</p></body></html>`))
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if doc.Text != "plain page" {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a  b", "a b"},
		{"  a\t\n b \r\n", "a b"},
		{"", ""},
		{"   ", ""},
		{"one", "one"},
	}
	for _, tc := range cases {
		if got := CollapseWhitespace(tc.in); got != tc.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
