package mdblog

import (
	"encoding/json"
	"fmt"
)

const manifestFileName = "index.json"

// manifestEntry is one article in index.json.
type manifestEntry struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Filename    string   `json:"filename"`
	URLPath     string   `json:"url_path"`
	Description string   `json:"description"`
}

// buildManifest encodes the listed pages, in order, as an indented JSON
// array. An empty listing encodes as [].
func buildManifest(pages []*page) ([]byte, error) {
	entries := make([]manifestEntry, len(pages))
	for i, p := range pages {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		entries[i] = manifestEntry{
			Title:       p.Title,
			Date:        p.Date,
			Author:      p.Author,
			Tags:        tags,
			Filename:    p.Filename,
			URLPath:     p.URLPath,
			Description: p.Description,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return append(data, '\n'), nil
}
