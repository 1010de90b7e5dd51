package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrHighlight indicates the code highlighter failed on a block.
var ErrHighlight = errors.New("code highlighting failed")

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "monokai"

// PlainTextLanguage is the highlighter name for untagged code.
const PlainTextLanguage = "plaintext"

// languageAliases maps fence tags to chroma lexer names.
var languageAliases = map[string]string{
	"":           PlainTextLanguage,
	"txt":        PlainTextLanguage,
	"text":       PlainTextLanguage,
	"plain":      PlainTextLanguage,
	"c++":        "C++",
	"cpp":        "C++",
	"yml":        "YAML",
	"yaml":       "YAML",
	"asm":        "NASM",
	"nasm":       "NASM",
	"bash":       "Bash",
	"shell":      "Bash",
	"sh":         "Bash",
	"cmake":      "CMake",
	"json":       "JSON",
	"lua":        "Lua",
	"protobuf":   "ProtocolBuffer",
	"proto":      "ProtocolBuffer",
	"python":     "Python",
	"py":         "Python",
	"rust":       "Rust",
	"rs":         "Rust",
	"toml":       "TOML",
	"c":          "C",
	"css":        "CSS",
	"html":       "HTML",
	"java":       "Java",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"go":         "Go",
	"golang":     "Go",
	"markdown":   "Markdown",
	"md":         "Markdown",
	"sql":        "SQL",
	"xml":        "XML",
	"makefile":   "Makefile",
	"make":       "Makefile",
	"diff":       "Diff",
}

// MapLanguage converts a fence language tag to the highlighter's vocabulary.
// Tags outside the alias table are returned lowercased for the highlighter's
// own lookup.
func MapLanguage(tag string) string {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if name, ok := languageAliases[lower]; ok {
		return name
	}
	return lower
}

// CodeHighlighter renders a code block as HTML.
// language is already mapped with MapLanguage.
// Implementations must be safe for concurrent use.
type CodeHighlighter interface {
	Highlight(code, language string) (string, error)
}

// Compile-time interface check.
var _ CodeHighlighter = (*ChromaHighlighter)(nil)

// ChromaHighlighter highlights code with chroma.
// The style and formatter are fixed at construction and only read afterwards.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	classes   bool
}

// NewChromaHighlighter creates a highlighter for the named chroma style.
// Unknown style names fall back to chroma's default style.
// With classes set, tokens carry CSS classes and WriteCSS emits the stylesheet;
// otherwise colors are inlined.
func NewChromaHighlighter(styleName string, classes bool) *ChromaHighlighter {
	if styleName == "" {
		styleName = DefaultHighlightStyle
	}
	return &ChromaHighlighter{
		style:     styles.Get(styleName),
		formatter: chromahtml.New(chromahtml.WithClasses(classes), chromahtml.TabWidth(4)),
		classes:   classes,
	}
}

// Highlight tokenises code with the lexer for language. Unknown languages
// are highlighted as plain text.
func (h *ChromaHighlighter) Highlight(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHighlight, err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHighlight, err)
	}
	return buf.String(), nil
}

// WriteCSS writes the stylesheet for class-based output.
// It writes nothing when colors are inlined.
func (h *ChromaHighlighter) WriteCSS(w io.Writer) error {
	if !h.classes {
		return nil
	}
	return h.formatter.WriteCSS(w, h.style)
}

// highlightBlock renders one code block, falling back to an escaped
// <pre><code> tagged with the lowercased original language.
func highlightBlock(h CodeHighlighter, code, tag string) string {
	if h != nil {
		if out, err := h.Highlight(code, MapLanguage(tag)); err == nil {
			return out
		}
	}
	return plainCodeBlock(code, tag)
}

func plainCodeBlock(code, tag string) string {
	var b strings.Builder
	lang := strings.ToLower(strings.TrimSpace(tag))
	if lang == "" {
		b.WriteString("<pre><code>")
	} else {
		class := "language-" + html.EscapeString(lang)
		b.WriteString(`<pre class="` + class + `"><code class="` + class + `">`)
	}
	b.WriteString(html.EscapeString(code))
	b.WriteString("</code></pre>\n")
	return b.String()
}
