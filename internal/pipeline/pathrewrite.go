package pipeline

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ResolveRelativeURLs rewrites relative img[src] and a[href] values against
// base so the fragment stays valid outside the site, as in a feed reader.
// If base is nil, returns the HTML unchanged.
//
// Does NOT rewrite:
//   - fragment-only links (#section), which stay page-local
//   - absolute URLs, protocol-relative URLs and data: URIs
//   - srcset attributes and CSS url() references
func ResolveRelativeURLs(htmlContent string, base *url.URL) (string, error) {
	if base == nil {
		return htmlContent, nil
	}

	doc, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}

	resolveNode(doc, base)
	return renderFragment(doc)
}

// Excerpt returns the visible text of an HTML fragment with whitespace
// collapsed, cut to at most maxRunes runes on a word boundary. A cut
// excerpt ends with an ellipsis. Code blocks and math annotations are skipped.
func Excerpt(htmlContent string, maxRunes int) (string, error) {
	doc, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	collectText(doc, &b)
	text := strings.Join(strings.Fields(b.String()), " ")

	if maxRunes <= 0 {
		return text, nil
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text, nil
	}

	cut := maxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxRunes
	}
	return strings.TrimSpace(string(runes[:cut])) + "…", nil
}

// parseFragment parses HTML in a body context and wraps the nodes in a
// document node for uniform traversal.
func parseFragment(content string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// renderFragment renders the children of a container built by parseFragment.
func renderFragment(doc *html.Node) (string, error) {
	var buf strings.Builder
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func resolveNode(n *html.Node, base *url.URL) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			resolveAttr(n, "src", base)
		case atom.A:
			resolveAttr(n, "href", base)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		resolveNode(c, base)
	}
}

func resolveAttr(n *html.Node, attrName string, base *url.URL) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativeURL(attr.Val) {
			continue
		}
		ref, err := url.Parse(attr.Val)
		if err != nil {
			continue
		}
		n.Attr[i].Val = base.ResolveReference(ref).String()
	}
}

// isRelativeURL returns true if the reference should be resolved.
func isRelativeURL(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Pre, atom.Script, atom.Style, atom.Annotation:
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
