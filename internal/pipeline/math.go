package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	katex "github.com/FurqanSoftware/goldmark-katex"
)

// ErrMathSyntax is returned when KaTeX rejects an expression.
var ErrMathSyntax = errors.New("invalid math expression")

// MathRenderer typesets a TeX math expression as HTML.
// Implementations must be safe for concurrent use.
type MathRenderer interface {
	RenderMath(src string, display bool) (string, error)
}

// Compile-time interface check.
var _ MathRenderer = (*KaTeXRenderer)(nil)

// KaTeXRenderer typesets math with the KaTeX bundle shipped by
// goldmark-katex. The output is KaTeX's HTML plus MathML, so pages need
// the KaTeX stylesheet.
//
// Every call evaluates the bundle in a fresh JavaScript runtime; results
// are cached per source and mode for the lifetime of the renderer.
type KaTeXRenderer struct {
	cache sync.Map // mathKey -> string
}

type mathKey struct {
	src     string
	display bool
}

// NewKaTeXRenderer creates a KaTeXRenderer with an empty cache.
func NewKaTeXRenderer() *KaTeXRenderer {
	return &KaTeXRenderer{}
}

// RenderMath renders src in display or inline mode.
// Returns ErrMathSyntax if KaTeX cannot parse the expression.
func (r *KaTeXRenderer) RenderMath(src string, display bool) (string, error) {
	key := mathKey{src: src, display: display}
	if v, ok := r.cache.Load(key); ok {
		return v.(string), nil
	}

	var buf bytes.Buffer
	if err := katex.Render(&buf, []byte(src), display); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMathSyntax, err)
	}

	out := buf.String()
	r.cache.Store(key, out)
	return out, nil
}
