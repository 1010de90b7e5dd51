// Package article extracts article metadata from source files.
//
// Metadata is encoded in the filename as a bracketed prefix:
//
//	[<date> <tag1,tag2,...> <author>]<slug>.<ext>
//
// Every field after the date is optional. The title comes from a leading
// "# " heading line; without one the slug doubles as the title.
package article

import (
	"path"
	"strings"
)

// HiddenTag marks an article that is published but not listed.
const HiddenTag = "Hidden"

// Article is a parsed source file.
// RenderedHTML and URLPath are left empty by Parse and filled during the build.
type Article struct {
	Title        string
	Body         string
	Date         string
	Author       string
	Tags         []string
	Filename     string
	RenderedHTML string
	URLPath      string
}

// Meta holds the fields encoded in a filename prefix.
type Meta struct {
	Date   string
	Tags   []string
	Author string
}

// Hidden reports whether the article carries the Hidden tag.
func (a *Article) Hidden() bool {
	for _, t := range a.Tags {
		if t == HiddenTag {
			return true
		}
	}
	return false
}

// Parse builds an Article from raw file content and a filename whose
// extension was already stripped. It never fails: missing structure
// degrades to defaults.
func Parse(content, filename, defaultAuthor string) Article {
	meta, slug := ParseFilename(filename)

	a := Article{
		Date:     meta.Date,
		Tags:     meta.Tags,
		Author:   meta.Author,
		Filename: slug,
	}
	if a.Author == "" {
		a.Author = defaultAuthor
	}

	a.Title, a.Body = splitTitle(content, slug)
	return a
}

// ParseFilename splits a filename into its metadata prefix and slug.
// A name without a bracketed prefix is returned unchanged as the slug.
func ParseFilename(name string) (Meta, string) {
	var meta Meta
	if !strings.HasPrefix(name, "[") {
		return meta, name
	}
	end := strings.IndexByte(name, ']')
	if end == -1 {
		return meta, name
	}

	fields := strings.Fields(name[1:end])
	if len(fields) > 0 {
		meta.Date = fields[0]
	}
	if len(fields) > 1 {
		meta.Tags = splitTags(fields[1])
	}
	if len(fields) > 2 {
		meta.Author = fields[2]
	}
	return meta, name[end+1:]
}

// SlugFromPath returns the canonical slug for a source path:
// directory and extension dropped, metadata prefix removed.
func SlugFromPath(p string) string {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	_, slug := ParseFilename(base)
	return slug
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// splitTitle extracts a leading "# " heading. The remaining lines keep their
// original separators; blank lines between the heading and the text are dropped.
func splitTitle(content, fallback string) (title, body string) {
	if !strings.HasPrefix(content, "# ") {
		return fallback, content
	}

	first, rest, _ := strings.Cut(content, "\n")
	title = strings.TrimSpace(strings.TrimSuffix(first[2:], "\r"))

	for {
		line, tail, found := strings.Cut(rest, "\n")
		if !found || strings.TrimSpace(line) != "" {
			break
		}
		rest = tail
	}
	if strings.TrimSpace(rest) == "" {
		rest = ""
	}
	return title, rest
}
