// Package popup tracks DOM regions that are themselves a legal popup, keeping
// one detector instance per page context. The detector consumes an abstract
// change feed of added/changed/removed element notifications, so a native DOM
// observer, a polling diff, or a test harness all satisfy the same contract:
// mutations are applied synchronously, in arrival order.
package popup

import (
	"strings"

	"github.com/keanesc/legal-lens/internal/extract"
)

// State is the detector lifecycle.
type State int

const (
	// Idle means no observation is active.
	Idle State = iota
	// Watching means mutations are being processed but nothing is tracked.
	Watching
	// Detected means exactly one popup element is currently tracked.
	Detected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Watching:
		return "watching"
	case Detected:
		return "detected"
	}
	return "unknown"
}

// Element is a page-owned view of one DOM node. The detector never mutates
// elements; identity is pointer identity.
type Element struct {
	Tag    string
	ID     string
	Class  string
	Role   string
	Text   string
	Parent *Element

	// Rendered geometry and computed style, supplied by the page context.
	Width, Height int
	Display       string
	Visibility    string
	Opacity       float64
	ZIndex        int
}

// Visible reports whether the element has a non-zero rendered box and is not
// hidden by style.
func (e *Element) Visible() bool {
	if e == nil {
		return false
	}
	return e.Width > 0 && e.Height > 0 &&
		e.Display != "none" && e.Visibility != "hidden" && e.Opacity > 0
}

func (e *Element) idClass() string {
	return strings.ToLower(e.ID + " " + e.Class + " " + e.Role)
}

// MutationKind discriminates change-feed notifications.
type MutationKind int

const (
	NodeAdded MutationKind = iota
	AttributesChanged
	NodeRemoved
)

// Mutation is one change-feed notification.
type Mutation struct {
	Kind   MutationKind
	Target *Element
}

// DefaultKeywords qualify an element's text as legal content.
var DefaultKeywords = []string{
	"terms of service",
	"terms of use",
	"terms and conditions",
	"privacy policy",
	"cookie policy",
	"cookies",
	"consent",
	"eula",
	"legal",
	"privacy",
}

// excludedMarkers flag ad/promo containers; an element inside one is never a
// legal popup, whatever else matches. Matched against id/class tokens split
// on non-alphanumerics, so "downloads" does not trip "ads".
var excludedMarkers = []string{
	"ad", "ads", "advert", "advertisement", "adbanner", "promo", "promotion", "sponsor", "sponsored",
}

// structuralMarkers make an element resemble a modal by class or id.
var structuralMarkers = []string{"modal", "popup", "overlay", "dialog", "drawer"}

const (
	// DefaultMinTextChars is the text-length alternative to structural
	// modal resemblance.
	DefaultMinTextChars = 50
	// DefaultMinZIndex is the stacking threshold for modal resemblance.
	DefaultMinZIndex = 1000
)

// Config tunes the detector. Zero-value fields fall back to package defaults.
type Config struct {
	Keywords     []string
	MinTextChars int
	MinZIndex    int
	// OnDetect surfaces the single user affordance for a newly tracked
	// element. It fires at most once per element, however often the element
	// re-qualifies.
	OnDetect func(*Element)
}

// Detector owns the tracked-popup state for one page context. It is not safe
// for concurrent use; the page context delivers mutations one at a time.
type Detector struct {
	cfg        Config
	state      State
	tracked    *Element
	affordance map[*Element]struct{}
}

// NewDetector builds an idle detector.
func NewDetector(cfg Config) *Detector {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = DefaultMinTextChars
	}
	if cfg.MinZIndex <= 0 {
		cfg.MinZIndex = DefaultMinZIndex
	}
	return &Detector{cfg: cfg, affordance: map[*Element]struct{}{}}
}

// Start begins watching and sweeps the initial candidates (the page's common
// popup selector matches) in order.
func (d *Detector) Start(initial []*Element) {
	d.state = Watching
	for _, e := range initial {
		if d.tryTrack(e) {
			break
		}
	}
}

// Stop detaches the detector and drops any tracked element.
func (d *Detector) Stop() {
	d.state = Idle
	d.tracked = nil
}

// State returns the current lifecycle state.
func (d *Detector) State() State { return d.state }

// Tracked returns the currently tracked popup element, or nil.
func (d *Detector) Tracked() *Element { return d.tracked }

// TrackedText returns the tracked element's text with whitespace collapsed,
// or the empty string when nothing is tracked.
func (d *Detector) TrackedText() string {
	if d.tracked == nil {
		return ""
	}
	return extract.CollapseWhitespace(d.tracked.Text)
}

// Apply processes one mutation. Calls are synchronous and ordered; the feed
// must not deliver the next batch until Apply returns.
func (d *Detector) Apply(m Mutation) {
	if d.state == Idle {
		return
	}
	switch m.Kind {
	case NodeAdded:
		d.tryTrack(m.Target)
	case AttributesChanged:
		if m.Target == d.tracked {
			if !d.tracked.Visible() {
				d.clearTracked()
			}
			return
		}
		d.tryTrack(m.Target)
	case NodeRemoved:
		if d.tracked != nil && isSelfOrDescendant(d.tracked, m.Target) {
			d.clearTracked()
		}
	}
}

// tryTrack tracks e if nothing is tracked yet and e qualifies. A newer
// qualifying element never evicts the current one; first detected wins until
// it disappears.
func (d *Detector) tryTrack(e *Element) bool {
	if d.tracked != nil || !d.Qualifies(e) {
		return false
	}
	d.tracked = e
	d.state = Detected
	if d.cfg.OnDetect != nil {
		if _, done := d.affordance[e]; !done {
			d.affordance[e] = struct{}{}
			d.cfg.OnDetect(e)
		}
	}
	return true
}

func (d *Detector) clearTracked() {
	d.tracked = nil
	d.state = Watching
}

// Qualifies is the detection predicate: visible, outside excluded ad
// containers, legal keyword present, and either structurally modal-like or
// carrying enough text. Keyword and structural-or-length conditions are both
// required so long ordinary pages do not match.
func (d *Detector) Qualifies(e *Element) bool {
	if !e.Visible() {
		return false
	}
	if insideExcludedContainer(e) {
		return false
	}
	text := strings.ToLower(e.Text)
	if !containsAnyKeyword(text, d.cfg.Keywords) {
		return false
	}
	return d.structurallyModal(e) || len(strings.TrimSpace(e.Text)) >= d.cfg.MinTextChars
}

func (d *Detector) structurallyModal(e *Element) bool {
	if e.ZIndex > d.cfg.MinZIndex {
		return true
	}
	idClass := e.idClass()
	for _, m := range structuralMarkers {
		if strings.Contains(idClass, m) {
			return true
		}
	}
	return false
}

func insideExcludedContainer(e *Element) bool {
	for p := e.Parent; p != nil; p = p.Parent {
		for _, token := range splitTokens(p.idClass()) {
			for _, m := range excludedMarkers {
				if token == m {
					return true
				}
			}
		}
	}
	return false
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

func containsAnyKeyword(lowerText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

func isSelfOrDescendant(e, ancestor *Element) bool {
	for cur := e; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}
