// Package mdblog generates a static blog from a directory of Markdown
// articles.
//
// # Quick Start
//
//	cfg, err := mdblog.LoadConfig("blog.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := mdblog.NewBuilder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := b.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Written, "files written")
//
// # Articles
//
// Each file under posts_path with the article_format extension is one
// article. Metadata lives in an optional filename prefix:
//
//	[2024.03.23 go,notes Alice]hello-world.md
//
// giving the date, a comma-separated tag list and an author. The first
// line "# Title" sets the title; otherwise the file name is used.
// Articles tagged Hidden are published with an .htm extension and left
// out of the index, the manifest, the feed and the profile.
//
// # Rendering Pipeline
//
//  1. Math protection: $…$ and $$…$$ outside code are typeset by KaTeX
//  2. Markdown to HTML via goldmark (GFM, footnotes, chroma code blocks,
//     images as figures, [TOC] marker)
//  3. Heading anchors and the table of contents
//  4. Optional sanitizing via bluemonday
//
// # Output
//
//	{output_path}/
//	├── {dir}/{slug}.html   # One page per article, source tree mirrored
//	├── index.html          # Card listing, newest first
//	├── index.json          # Article manifest
//	├── rss.xml             # RSS 2.0 feed
//	└── style.css           # Theme stylesheet (+ highlighter classes)
//
// When profile_path is set, {profile_path}/README.md lists the newest
// articles. Every file is written only when its content changed.
//
// # Themes
//
// Themes are mustache templates (article.html, card.html, optional
// profile.md) plus a stylesheet. Override them with assets_path:
//
//	assets/
//	├── styles/
//	│   └── {theme}.css
//	└── templates/
//	    └── {theme}/
//	        ├── article.html
//	        ├── card.html
//	        └── profile.md
package mdblog
