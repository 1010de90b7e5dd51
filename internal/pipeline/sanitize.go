package pipeline

import (
	"github.com/microcosm-cc/bluemonday"
)

// mathElements are the MathML elements KaTeX emits.
var mathElements = []string{
	"math", "semantics", "annotation", "mrow", "mi", "mn", "mo", "mtext",
	"msup", "msub", "msubsup", "mfrac", "msqrt", "mroot", "mover", "munder",
	"munderover", "mspace", "mstyle", "mpadded", "mphantom", "menclose",
	"mtable", "mtr", "mtd", "mlabeledtr",
}

// mathAttrs are the MathML presentation attributes KaTeX sets.
var mathAttrs = []string{
	"mathvariant", "displaystyle", "scriptlevel", "stretchy", "fence",
	"separator", "lspace", "rspace", "minsize", "maxsize", "accent",
	"accentunder", "linethickness", "columnalign", "columnspacing",
	"rowspacing", "columnlines", "rowlines", "notation", "width", "height",
	"depth", "voffset", "movablelimits", "symmetric",
}

// katexStyles are the inline style properties of KaTeX's HTML layout.
var katexStyles = []string{
	"height", "width", "min-width", "vertical-align", "top", "bottom",
	"left", "right", "margin-left", "margin-right", "padding-left",
	"border-bottom-width", "border-right-width", "border-top-width",
	"position", "color",
}

// Sanitizer strips unsafe markup from rendered article HTML while keeping
// everything the pipeline itself produces: figures, math, highlighted code
// and heading anchors.
// A Sanitizer is safe for concurrent use once created.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a policy on top of bluemonday's user-generated-content
// policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)

	p.AllowElements("figure", "figcaption", "eqn")
	p.AllowElements(mathElements...)
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("tabindex").OnElements("img", "pre")
	p.AllowAttrs("xmlns", "display").OnElements("math")
	p.AllowAttrs("encoding").OnElements("annotation")
	p.AllowAttrs(mathAttrs...).OnElements(mathElements...)
	p.AllowAttrs("aria-hidden").OnElements("span")
	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").
		OnElements("pre", "span", "code")
	p.AllowStyles(katexStyles...).OnElements("span")

	// KaTeX draws stretchy arrows, roots and braces as inline SVG.
	p.AllowElements("svg", "path", "line")
	p.AllowAttrs("xmlns", "width", "height", "viewbox", "viewBox", "preserveaspectratio", "preserveAspectRatio").OnElements("svg")
	p.AllowAttrs("d").OnElements("path")
	p.AllowAttrs("x1", "y1", "x2", "y2", "stroke-width").OnElements("line")

	return &Sanitizer{policy: p}
}

// Sanitize returns htmlContent with disallowed elements and attributes removed.
func (s *Sanitizer) Sanitize(htmlContent string) string {
	return s.policy.Sanitize(htmlContent)
}
