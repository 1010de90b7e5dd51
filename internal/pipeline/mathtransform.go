package pipeline

import (
	"html"
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Containers emitted around rendered math.
const (
	DisplayMathOpen  = `<eqn><span class="math-display">`
	DisplayMathClose = `</span></eqn>`
	InlineMathOpen   = `<span class="math-inline">`
	InlineMathClose  = `</span>`
)

type spanKind int

const (
	spanProse spanKind = iota
	spanCode
	spanMath
)

// span is a typed region of an article body. Only prose spans are ever
// rewritten; code and math spans are emitted as they are.
type span struct {
	kind spanKind
	text string
}

// Display math: $$ to the next $$, across newlines.
var displayMathPattern = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)

// codeParser finds code regions the same way the Markdown stage will.
// goldmark parsers are safe for concurrent use.
var codeParser = goldmark.DefaultParser()

// markdownInert maps characters the Markdown parser would interpret
// to numeric character references. Newlines are encoded too, so inserted
// math never ends a paragraph or starts a list item.
var markdownInert = strings.NewReplacer(
	`\`, "&#92;",
	"*", "&#42;",
	"_", "&#95;",
	"`", "&#96;",
	"[", "&#91;",
	"]", "&#93;",
	"~", "&#126;",
	"|", "&#124;",
	"$", "&#36;",
	"\n", "&#10;",
)

// ProtectMath renders every $$...$$ and $...$ region of body with m while
// leaving code untouched. Code regions are the fenced (``` or ~~~) and
// indented blocks and the code spans goldmark finds in body. Display math is
// then cut from the remaining prose, and inline math is only searched in the
// prose left after that.
func ProtectMath(body string, m MathRenderer) string {
	if !strings.Contains(body, "$") {
		return body
	}

	spans := splitCode(body)
	spans = splitSpans(spans, displayMathPattern, func(match string) span {
		src := match[2 : len(match)-2]
		return span{kind: spanMath, text: renderMath(m, src, true)}
	})

	var b strings.Builder
	b.Grow(len(body))
	for _, s := range spans {
		if s.kind == spanProse {
			b.WriteString(replaceInlineMath(s.text, m))
			continue
		}
		b.WriteString(s.text)
	}
	return b.String()
}

// splitCode cuts body into prose and code spans.
func splitCode(body string) []span {
	ranges := codeRanges([]byte(body))
	if len(ranges) == 0 {
		return []span{{kind: spanProse, text: body}}
	}

	spans := make([]span, 0, 2*len(ranges)+1)
	prev := 0
	for _, r := range ranges {
		if r[0] < prev {
			continue
		}
		if r[0] > prev {
			spans = append(spans, span{kind: spanProse, text: body[prev:r[0]]})
		}
		spans = append(spans, span{kind: spanCode, text: body[r[0]:r[1]]})
		prev = r[1]
	}
	if prev < len(body) {
		spans = append(spans, span{kind: spanProse, text: body[prev:]})
	}
	return spans
}

// codeRanges returns the sorted byte ranges of src holding code: the
// content and info string of fenced blocks, the lines of indented blocks
// and the text of code spans.
func codeRanges(src []byte) [][2]int {
	doc := codeParser.Parse(text.NewReader(src))

	var ranges [][2]int
	addLines := func(lines *text.Segments) {
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			ranges = append(ranges, [2]int{seg.Start, seg.Stop})
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock:
			if n.Info != nil {
				ranges = append(ranges, [2]int{n.Info.Segment.Start, n.Info.Segment.Stop})
			}
			addLines(n.Lines())
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			addLines(n.Lines())
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					ranges = append(ranges, [2]int{t.Segment.Start, t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	slices.SortFunc(ranges, func(a, b [2]int) int { return a[0] - b[0] })
	return ranges
}

// splitSpans cuts every prose span at the matches of re. Each match becomes
// the span returned by wrap.
func splitSpans(spans []span, re *regexp.Regexp, wrap func(match string) span) []span {
	out := make([]span, 0, len(spans))
	for _, s := range spans {
		if s.kind != spanProse {
			out = append(out, s)
			continue
		}

		locs := re.FindAllStringIndex(s.text, -1)
		if len(locs) == 0 {
			out = append(out, s)
			continue
		}

		prev := 0
		for _, loc := range locs {
			if loc[0] > prev {
				out = append(out, span{kind: spanProse, text: s.text[prev:loc[0]]})
			}
			out = append(out, wrap(s.text[loc[0]:loc[1]]))
			prev = loc[1]
		}
		if prev < len(s.text) {
			out = append(out, span{kind: spanProse, text: s.text[prev:]})
		}
	}
	return out
}

// replaceInlineMath renders $...$ regions of a prose span. An opening dollar
// must not be part of $$ nor escaped with a backslash, and the closing dollar
// must be on the same line. Anything else stays literal.
func replaceInlineMath(s string, m MathRenderer) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '$':
			b.WriteString(`\$`)
			i += 2
		case c != '$':
			b.WriteByte(c)
			i++
		case i+1 < len(s) && s[i+1] == '$':
			b.WriteString("$$")
			i += 2
		default:
			end := closingDollar(s, i+1)
			if end == -1 {
				b.WriteByte('$')
				i++
				continue
			}
			b.WriteString(renderMath(m, s[i+1:end], false))
			i = end + 1
		}
	}
	return b.String()
}

func closingDollar(s string, from int) int {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case '\n':
			return -1
		case '$':
			return j
		}
	}
	return -1
}

// renderMath typesets src and wraps it in its container. Blank math renders
// to nothing; a renderer error falls back to the escaped source. The result
// is a single line that the Markdown parser passes through unchanged.
func renderMath(m MathRenderer, src string, display bool) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	out := inertText(src)
	if m != nil {
		if rendered, err := m.RenderMath(src, display); err == nil {
			out = inertHTML(rendered)
		}
	}

	if display {
		return DisplayMathOpen + out + DisplayMathClose
	}
	return InlineMathOpen + out + InlineMathClose
}

// inertText escapes s for HTML and for re-parsing as Markdown inline content.
func inertText(s string) string {
	return markdownInert.Replace(html.EscapeString(s))
}

// inertHTML makes rendered markup safe to insert before Markdown parsing.
// Text between tags gets the inertText treatment minus HTML escaping, which
// the renderer already did; newlines inside tags become spaces.
func inertHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt == -1 {
			b.WriteString(markdownInert.Replace(s))
			break
		}
		b.WriteString(markdownInert.Replace(s[:lt]))

		gt := strings.IndexByte(s[lt:], '>')
		if gt == -1 {
			b.WriteString(markdownInert.Replace(s[lt:]))
			break
		}
		b.WriteString(strings.ReplaceAll(s[lt:lt+gt+1], "\n", " "))
		s = s[lt+gt+1:]
	}
	return b.String()
}
