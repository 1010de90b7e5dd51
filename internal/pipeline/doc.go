// Package pipeline turns the body of one article into an HTML fragment.
//
// The stages run in a fixed order:
//   - Math protection: $$...$$ and $...$ regions outside code are typeset
//     by KaTeX before Markdown sees them
//   - Markdown to HTML via Goldmark (GFM, footnotes), with code blocks
//     highlighted by chroma, images rendered as linked figures and [TOC]
//     paragraphs replaced by a placeholder
//   - Heading anchors on every plain-text heading
//   - Table of contents built from the anchored headings, substituted for
//     the placeholder
//   - Optional sanitizing through a bluemonday policy
//
// Page layout, templates and site files are handled by the root mdblog
// package. This package knows nothing about the site an article belongs to.
package pipeline
