package mdblog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alnah/go-mdblog/internal/article"
	"github.com/alnah/go-mdblog/internal/config"
)

// giscusSource renders the comment widget. Values are HTML-escaped by
// mustache, so configuration cannot break out of the attributes.
const giscusSource = `<script src="https://giscus.app/client.js"
        data-repo="{{repo}}"
        data-repo-id="{{repo_id}}"
        data-category="{{category}}"
        data-category-id="{{category_id}}"
        data-mapping="title"
        data-reactions-enabled="0"
        data-emit-metadata="0"
        data-input-position="bottom"
        data-theme="preferred_color_scheme"
        data-lang="{{lang}}"
        crossorigin="anonymous"
        async>
</script>`

// page is a rendered article together with the values derived during the
// build.
type page struct {
	article.Article
	Description string // Plain-text excerpt of the body
	RelDir      string
}

// escapedURLPath percent-encodes a site-absolute path for use in links.
func escapedURLPath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

// absoluteURL joins the site URL and a page path.
func absoluteURL(cfg *config.Config, p string) string {
	return cfg.BaseURL() + escapedURLPath(p)
}

// tagViews exposes tags as {name} objects so templates can iterate them.
func tagViews(tags []string) []map[string]string {
	views := make([]map[string]string, len(tags))
	for i, t := range tags {
		views[i] = map[string]string{"name": t}
	}
	return views
}

// siteView holds the values shared by every page.
func (b *Builder) siteView() map[string]any {
	cfg := b.cfg
	now := b.now()
	return map[string]any{
		"site_name":           cfg.SiteName,
		"site_url":            cfg.BaseURL(),
		"site_description":    cfg.SiteDescription,
		"site_language":       cfg.SiteLanguage,
		"web_master":          cfg.WebMaster,
		"google_analytics_id": cfg.GoogleAnalyticsID,
		"year":                strconv.Itoa(now.Year()),
		"build_date":          b.formatDate(now),
	}
}

// articleView is the mustache context of an article page.
func (b *Builder) articleView(p *page, comment string) map[string]any {
	tagsJSON, _ := json.Marshal(p.Tags) // []string cannot fail
	if p.Tags == nil {
		tagsJSON = []byte("[]")
	}

	view := b.siteView()
	view["is_article"] = true
	view["title_string"] = fmt.Sprintf("%s | %s", p.Title, b.cfg.SiteName)
	view["title"] = p.Title
	view["date"] = p.Date
	view["author"] = p.Author
	view["tags"] = tagViews(p.Tags)
	view["tags_json"] = string(tagsJSON)
	view["description"] = p.Description
	view["url_path"] = escapedURLPath(p.URLPath)
	view["url"] = absoluteURL(b.cfg, p.URLPath)
	view["article"] = p.RenderedHTML
	view["comment"] = comment
	return view
}

// indexView wraps the rendered card listing into the page shell.
func (b *Builder) indexView(cards string) map[string]any {
	view := b.siteView()
	view["is_article"] = false
	view["title_string"] = b.cfg.SiteName
	view["title"] = b.cfg.SiteName
	view["description"] = b.cfg.SiteDescription
	view["url_path"] = "/"
	view["url"] = b.cfg.BaseURL() + "/"
	view["article"] = cards
	view["comment"] = ""
	return view
}

// cardView is the per-article entry of the index and profile listings.
func (b *Builder) cardView(p *page) map[string]any {
	return map[string]any{
		"title":       p.Title,
		"date":        p.Date,
		"author":      p.Author,
		"tags":        tagViews(p.Tags),
		"description": p.Description,
		"filename":    p.Filename,
		"url_path":    escapedURLPath(p.URLPath),
		"url":         absoluteURL(b.cfg, p.URLPath),
	}
}

// listView renders pages as the "articles" list of the card and profile
// templates.
func (b *Builder) listView(pages []*page) map[string]any {
	cards := make([]map[string]any, len(pages))
	for i, p := range pages {
		cards[i] = b.cardView(p)
	}
	return map[string]any{"articles": cards}
}

// commentWidget returns the giscus script, or "" when comments are not
// configured or the page is hidden.
func (b *Builder) commentWidget(p *page) (string, error) {
	if p.Hidden() || !b.cfg.GiscusEnabled() {
		return "", nil
	}
	out, err := b.giscus.Render(map[string]string{
		"repo":        b.cfg.GithubRepo,
		"repo_id":     b.cfg.GithubRepoID,
		"category":    b.cfg.GiscusCategory,
		"category_id": b.cfg.GiscusCategoryID,
		"lang":        b.cfg.SiteLanguage,
	})
	if err != nil {
		return "", fmt.Errorf("%w: comment widget: %v", ErrTemplate, err)
	}
	return out, nil
}
