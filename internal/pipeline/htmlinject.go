package pipeline

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxTOCLevel is the deepest heading level listed in a table of contents.
const MaxTOCLevel = 3

// Heading is a heading that received an anchor, in document order.
type Heading struct {
	Level int    // 1-6
	Slug  string // unencoded slug
	Text  string // display text, HTML entities decoded
}

// headingPattern matches h1-h6 elements whose content is plain text.
// Headings with attributes or nested tags do not match and get no anchor.
// Captures: 1=level, 2=text, 3=closing level.
var headingPattern = regexp.MustCompile(`<h([1-6])>([^<]+)</h([1-6])>`)

// InjectAnchors wraps the text of every plain heading in a link to its own
// slug and returns the headings it processed.
func InjectAnchors(htmlContent string) (string, []Heading) {
	var headings []Heading

	out := headingPattern.ReplaceAllStringFunc(htmlContent, func(m string) string {
		sub := headingPattern.FindStringSubmatch(m)
		if sub[1] != sub[3] {
			return m
		}
		level, _ := strconv.Atoi(sub[1])
		text := html.UnescapeString(sub[2])
		slug := Slugify(text)

		headings = append(headings, Heading{Level: level, Slug: slug, Text: text})

		var b strings.Builder
		b.WriteString("<h")
		b.WriteString(sub[1])
		b.WriteString(`><a href="#`)
		b.WriteString(EncodeSlug(slug))
		b.WriteString(`">`)
		b.WriteString(sub[2])
		b.WriteString("</a></h")
		b.WriteString(sub[1])
		b.WriteString(">")
		return b.String()
	})

	return out, headings
}

// Slugify lowercases s, drops everything but letters, digits, whitespace and
// hyphens, then joins the remaining words with single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) ||
			unicode.IsSpace(r) || r == '-' {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), "-")
}

// EncodeSlug percent-encodes a slug for use in a URL fragment.
func EncodeSlug(slug string) string {
	return url.PathEscape(slug)
}

// BuildTOC renders headings of level 1-3 as nested lists. Nesting follows a
// running level that starts at 1: a deeper heading opens one list per level,
// a shallower one closes back to its level. Deeper headings are skipped.
// Returns "" when no heading qualifies.
func BuildTOC(headings []Heading) string {
	if !hasTOCHeading(headings) {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<div class="table-of-contents"><ul>`)

	current := 1
	for _, h := range headings {
		if h.Level > MaxTOCLevel {
			continue
		}
		for current < h.Level {
			buf.WriteString("<ul>")
			current++
		}
		for current > h.Level {
			buf.WriteString("</ul>")
			current--
		}

		buf.WriteString(`<li><a href="#`)
		buf.WriteString(EncodeSlug(h.Slug))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></li>`)
	}

	for current > 1 {
		buf.WriteString("</ul>")
		current--
	}

	buf.WriteString(`</ul></div>`)
	return buf.String()
}

func hasTOCHeading(headings []Heading) bool {
	for _, h := range headings {
		if h.Level <= MaxTOCLevel {
			return true
		}
	}
	return false
}

// InjectTOC replaces every TOC placeholder with toc.
func InjectTOC(htmlContent, toc string) string {
	return strings.ReplaceAll(htmlContent, TOCPlaceholder, toc)
}
