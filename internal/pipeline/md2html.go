package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// crlfOrCR matches Windows and classic Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Result is the output of rendering one article body.
type Result struct {
	HTML     string
	Headings []Heading
}

// Renderer turns article bodies into HTML fragments.
// It is built once and shared: nothing in it changes after NewRenderer
// returns, so concurrent Render calls are safe.
type Renderer struct {
	md          goldmark.Markdown
	math        MathRenderer
	highlighter CodeHighlighter
	sanitizer   *Sanitizer
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithMathRenderer sets the math renderer. A nil renderer makes every
// math span fall back to its escaped source.
func WithMathRenderer(m MathRenderer) RendererOption {
	return func(r *Renderer) {
		r.math = m
	}
}

// WithHighlighter sets the code highlighter.
func WithHighlighter(h CodeHighlighter) RendererOption {
	return func(r *Renderer) {
		r.highlighter = h
	}
}

// WithSanitizer filters the final HTML through s.
func WithSanitizer(s *Sanitizer) RendererOption {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// NewRenderer creates a Renderer with the KaTeX renderer and a chroma
// highlighter using the default style, unless overridden by opts.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		math:        NewKaTeXRenderer(),
		highlighter: NewChromaHighlighter(DefaultHighlightStyle, false),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
		),
		goldmark.WithParserOptions(
			// No WithAutoHeadingID: anchors are added after rendering and
			// only plain <hN>text</hN> headings qualify.
			parser.WithASTTransformers(
				util.Prioritized(&tocMarkerTransformer{}, 100),
				util.Prioritized(&mdLinkTransformer{}, 200),
			),
		),
		goldmark.WithRendererOptions(
			// Math is rendered to HTML before parsing and must pass through.
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&blockRenderer{highlighter: r.highlighter}, 100),
			),
		),
	)
	return r
}

// Render converts an article body to HTML: math first, then Markdown,
// then heading anchors and the table of contents.
func (r *Renderer) Render(ctx context.Context, body string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body = normalizeLineEndings(body)
	body = ProtectMath(body, r.math)

	fragment, err := r.toHTML(ctx, body)
	if err != nil {
		return nil, err
	}

	fragment, headings := InjectAnchors(fragment)
	if strings.Contains(fragment, TOCPlaceholder) {
		fragment = InjectTOC(fragment, BuildTOC(headings))
	}

	if r.sanitizer != nil {
		fragment = r.sanitizer.Sanitize(fragment)
	}

	return &Result{HTML: fragment, Headings: headings}, nil
}

// toHTML runs goldmark. Supports context cancellation via goroutine + select
// since goldmark doesn't natively support context.
func (r *Renderer) toHTML(ctx context.Context, content string) (string, error) {
	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
