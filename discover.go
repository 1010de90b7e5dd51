package mdblog

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// source is one article file found under the posts directory.
type source struct {
	Path   string // Filesystem path to read
	RelDir string // Slash-separated directory relative to the posts root; "" at the root
	Stem   string // File name without extension, metadata prefix included
}

// discoverArticles walks root and returns the files ending in ext, in
// lexical path order. Hidden files and directories (leading dot) are skipped.
func discoverArticles(root, ext string) ([]source, error) {
	var sources []source
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || filepath.Ext(p) != ext {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		relDir := filepath.ToSlash(filepath.Dir(rel))
		if relDir == "." {
			relDir = ""
		}

		sources = append(sources, source{
			Path:   p,
			RelDir: relDir,
			Stem:   strings.TrimSuffix(d.Name(), ext),
		})
		return nil
	})
	return sources, err
}

// urlPath returns the site-absolute URL of an output page.
func urlPath(relDir, fileName string) string {
	return path.Join("/", relDir, fileName)
}
