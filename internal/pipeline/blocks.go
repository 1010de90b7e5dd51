package pipeline

import (
	"bytes"
	"path"
	"strings"

	"github.com/alnah/go-mdblog/internal/article"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// TOCMarker is the paragraph text that requests a table of contents.
const TOCMarker = "[TOC]"

// TOCPlaceholder marks where the table of contents goes in rendered HTML.
const TOCPlaceholder = "<!-- TOC_PLACEHOLDER -->"

// KindTOCMarker is the node kind of a [TOC] paragraph.
var KindTOCMarker = ast.NewNodeKind("TOCMarker")

// tocMarker replaces a [TOC] paragraph in the AST.
type tocMarker struct {
	ast.BaseBlock
}

func (n *tocMarker) Kind() ast.NodeKind { return KindTOCMarker }

func (n *tocMarker) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// tocMarkerTransformer swaps every paragraph consisting solely of [TOC]
// for a tocMarker node.
type tocMarkerTransformer struct{}

func (t *tocMarkerTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var markers []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		if strings.TrimSpace(string(n.Lines().Value(source))) == TOCMarker {
			markers = append(markers, n)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, n := range markers {
		n.Parent().ReplaceChild(n.Parent(), n, &tocMarker{})
	}
}

// mdLinkTransformer points relative links to Markdown sources at the
// generated page: "[2024.01.01 Go]post.md#x" becomes "post.html#x".
type mdLinkTransformer struct{}

func (t *mdLinkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if dest, ok := rewriteMarkdownLink(string(link.Destination)); ok {
			link.Destination = []byte(dest)
		}
		return ast.WalkContinue, nil
	})
}

// rewriteMarkdownLink maps a relative .md destination to its .html page.
func rewriteMarkdownLink(dest string) (string, bool) {
	if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "//") ||
		strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}

	target, fragment, _ := strings.Cut(dest, "#")
	if !strings.EqualFold(path.Ext(target), ".md") {
		return "", false
	}

	dir, file := path.Split(target)
	out := dir + article.SlugFromPath(file) + ".html"
	if fragment != "" {
		out += "#" + fragment
	}
	return out, true
}

// blockRenderer overrides goldmark's HTML output for paragraphs, code blocks,
// images and [TOC] markers.
type blockRenderer struct {
	highlighter CodeHighlighter
}

func (r *blockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(KindTOCMarker, r.renderTOCMarker)
}

// renderParagraph drops the <p> around a paragraph holding a single image,
// since the image renders as a block-level figure.
func (r *blockRenderer) renderParagraph(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if isLoneImage(node) {
		if !entering {
			_ = w.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	}

	if !entering {
		_, _ = w.WriteString("</p>\n")
		return ast.WalkContinue, nil
	}
	if node.Attributes() != nil {
		_, _ = w.WriteString("<p")
		html.RenderAttributes(w, node, html.ParagraphAttributeFilter)
		_ = w.WriteByte('>')
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<p>")
	return ast.WalkContinue, nil
}

func isLoneImage(node ast.Node) bool {
	first := node.FirstChild()
	if first == nil || first != node.LastChild() {
		return false
	}
	_, ok := first.(*ast.Image)
	return ok
}

func (r *blockRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var lang string
	if fenced, ok := node.(*ast.FencedCodeBlock); ok && fenced.Info != nil {
		lang = string(fenced.Language(source))
	}

	var code bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	_, _ = w.WriteString(highlightBlock(r.highlighter, code.String(), lang))
	return ast.WalkSkipChildren, nil
}

// renderImage wraps an image in a linked figure. A paragraph holding only
// the image is not emitted, see renderParagraph. The title fills alt, title
// and the caption; the caption is omitted when the title is empty.
func (r *blockRenderer) renderImage(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	img := node.(*ast.Image)

	dest := util.EscapeHTML(img.Destination)
	title := util.EscapeHTML(img.Title)

	_, _ = w.WriteString(`<figure><a href="`)
	_, _ = w.Write(dest)
	_, _ = w.WriteString(`"><img src="`)
	_, _ = w.Write(dest)
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(title)
	_, _ = w.WriteString(`" title="`)
	_, _ = w.Write(title)
	_, _ = w.WriteString(`" tabindex="-1"></a>`)
	if len(img.Title) > 0 {
		_, _ = w.WriteString("<figcaption>")
		_, _ = w.Write(title)
		_, _ = w.WriteString("</figcaption>")
	}
	_, _ = w.WriteString("</figure>")
	return ast.WalkSkipChildren, nil
}

func (r *blockRenderer) renderTOCMarker(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(TOCPlaceholder + "\n")
	}
	return ast.WalkSkipChildren, nil
}
