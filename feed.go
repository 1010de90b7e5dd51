package mdblog

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/dateutil"
	"github.com/alnah/go-mdblog/internal/pipeline"
)

// Feed constants.
const (
	atomNamespace    = "http://www.w3.org/2005/Atom"
	dcNamespace      = "http://purl.org/dc/elements/1.1/"
	contentNamespace = "http://purl.org/rss/1.0/modules/content/"

	// rssDateLayout is RFC 822 with a literal GMT zone; times are UTC.
	rssDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

	feedFileName = "rss.xml"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	DCNS    string     `xml:"xmlns:dc,attr"`
	CtNS    string     `xml:"xmlns:content,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	WebMaster     string    `xml:"webMaster,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Creator     string   `xml:"dc:creator,omitempty"`
	Categories  []string `xml:"category"`
	Description string   `xml:"description,omitempty"`
	Content     string   `xml:"content:encoded,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// buildFeed renders the RSS 2.0 document for the newest pages. pages must
// already be sorted newest first; at most cfg.RSSLimit items are emitted.
// An article date that cannot be parsed falls back to now. Item content
// carries the article HTML with relative links made absolute.
func buildFeed(cfg *config.Config, pages []*page, now time.Time) ([]byte, error) {
	now = now.UTC()
	pages = pages[:min(len(pages), cfg.RSSLimit)]

	items := make([]rssItem, 0, len(pages))
	for _, p := range pages {
		link := absoluteURL(cfg, p.URLPath)

		published := now
		if t, err := dateutil.ParseArticleDate(p.Date, cfg.DateFormat); err == nil {
			published = t
		}

		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     published.Format(rssDateLayout),
			Creator:     p.Author,
			Categories:  p.Tags,
			Description: p.Description,
			Content:     feedContent(p.RenderedHTML, link),
		})
	}

	feed := rssFeed{
		Version: "2.0",
		AtomNS:  atomNamespace,
		DCNS:    dcNamespace,
		CtNS:    contentNamespace,
		Channel: rssChannel{
			Title:         cfg.SiteName,
			Link:          cfg.BaseURL(),
			Description:   cfg.SiteDescription,
			Language:      cfg.SiteLanguage,
			WebMaster:     cfg.WebMaster,
			LastBuildDate: now.Format(rssDateLayout),
			AtomLink: atomLink{
				Href: cfg.BaseURL() + "/" + feedFileName,
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}

	body, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// feedContent resolves relative URLs in body against the article link.
// The body is returned as is when it cannot be rewritten.
func feedContent(body, link string) string {
	base, err := url.Parse(link)
	if err != nil {
		return body
	}
	resolved, err := pipeline.ResolveRelativeURLs(body, base)
	if err != nil {
		return body
	}
	return resolved
}
