package mdblog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/rs/zerolog"

	"github.com/alnah/go-mdblog/internal/article"
	"github.com/alnah/go-mdblog/internal/assets"
	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/dateutil"
	"github.com/alnah/go-mdblog/internal/fileutil"
	"github.com/alnah/go-mdblog/internal/hints"
	"github.com/alnah/go-mdblog/internal/pipeline"
)

// Output names inside the output directory.
const (
	indexFileName      = "index.html"
	stylesheetFileName = "style.css"
	profileFileName    = "README.md"

	pageExt       = ".html"
	hiddenPageExt = ".htm"

	// excerptRunes bounds descriptions in the feed, manifest and cards.
	excerptRunes = 200
)

// Builder generates the static site described by a configuration.
// Create with NewBuilder and call Build for each generation. A Builder
// may be reused across builds but Build must not run concurrently.
type Builder struct {
	cfg         *config.Config
	logger      zerolog.Logger
	loader      assets.AssetLoader
	renderer    *pipeline.Renderer
	highlighter *pipeline.ChromaHighlighter // nil when the renderer is injected
	workers     int
	now         func() time.Time

	article    *mustache.Template
	card       *mustache.Template
	profile    *mustache.Template // nil when the theme has no profile template
	giscus     *mustache.Template
	stylesheet string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithAssetLoader sets where themes and stylesheets come from. The default
// resolves the configured assets_path over the embedded themes.
func WithAssetLoader(l AssetLoader) Option {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithWorkers sets the number of articles rendered in parallel, overriding
// the configuration. 0 means auto.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithNow sets the clock used for build dates and the feed.
func WithNow(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithRenderer replaces the article renderer built from the configuration.
// No highlighter stylesheet is emitted for an injected renderer.
func WithRenderer(r *pipeline.Renderer) Option {
	return func(b *Builder) {
		b.renderer = r
	}
}

// BuildResult summarizes one build.
type BuildResult struct {
	Articles  int // Listed articles
	Hidden    int // Published but unlisted articles
	Skipped   int // Empty source files
	Written   int // Files created or updated
	Unchanged int // Files left untouched because their content matched
	Duration  time.Duration
}

// buildStats counts file writes across render workers.
type buildStats struct {
	written   atomic.Int64
	unchanged atomic.Int64
	skipped   atomic.Int64
}

// NewBuilder validates cfg and prepares the renderer and theme.
// Returns ErrInvalidConfig, ErrInvalidWorkers, ErrAssets or ErrTemplate.
func NewBuilder(cfg *Config, opts ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	b := &Builder{
		cfg:     cfg,
		logger:  zerolog.Nop(),
		workers: cfg.Workers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := validateWorkers(b.workers); err != nil {
		return nil, err
	}
	b.workers = ResolveWorkers(b.workers)

	if _, err := dateutil.ParseDateFormat(cfg.DateFormat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if b.loader == nil {
		resolver, err := assets.NewAssetResolver(cfg.AssetsPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAssets, err)
		}
		b.loader = resolver
	}

	if b.renderer == nil {
		b.highlighter = pipeline.NewChromaHighlighter(cfg.HighlightStyle, cfg.HighlightClasses)
		rendererOpts := []pipeline.RendererOption{pipeline.WithHighlighter(b.highlighter)}
		if cfg.Sanitize {
			rendererOpts = append(rendererOpts, pipeline.WithSanitizer(pipeline.NewSanitizer()))
		}
		b.renderer = pipeline.NewRenderer(rendererOpts...)
	}

	if err := b.loadTheme(); err != nil {
		return nil, err
	}
	if err := b.loadStylesheet(); err != nil {
		return nil, err
	}

	return b, nil
}

// loadTheme loads and compiles the configured template set.
func (b *Builder) loadTheme() error {
	ts, err := b.loader.LoadTemplateSet(b.themeName())
	if err != nil {
		if errors.Is(err, assets.ErrTemplateSetNotFound) {
			return fmt.Errorf("%w: %w%s", ErrAssets, err, hints.ForThemeNotFound(b.loader.Themes()))
		}
		return fmt.Errorf("%w: %w", ErrAssets, err)
	}

	parse := func(file, src string) (*mustache.Template, error) {
		tmpl, err := mustache.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s of theme %q: %v", ErrTemplate, file, ts.Name, err)
		}
		return tmpl, nil
	}

	if b.article, err = parse(assets.ArticleTemplateFile, ts.Article); err != nil {
		return err
	}
	if b.card, err = parse(assets.CardTemplateFile, ts.Card); err != nil {
		return err
	}
	if ts.HasProfile() {
		if b.profile, err = parse(assets.ProfileTemplateFile, ts.Profile); err != nil {
			return err
		}
	}
	if b.giscus, err = parse("comment widget", giscusSource); err != nil {
		return err
	}
	return nil
}

// loadStylesheet loads the theme stylesheet, falling back to the default
// one for themes that ship none, and appends the highlighter classes.
func (b *Builder) loadStylesheet() error {
	css, err := b.loader.LoadStyle(b.themeName())
	if errors.Is(err, assets.ErrStyleNotFound) && b.themeName() != assets.DefaultStyleName {
		css, err = b.loader.LoadStyle(assets.DefaultStyleName)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssets, err)
	}

	var sb strings.Builder
	sb.WriteString(css)
	if b.highlighter != nil && b.cfg.HighlightClasses {
		sb.WriteString("\n/* Syntax highlighting */\n")
		if err := b.highlighter.WriteCSS(&sb); err != nil {
			return fmt.Errorf("%w: highlighter stylesheet: %v", ErrAssets, err)
		}
	}
	b.stylesheet = sb.String()
	return nil
}

// themeName returns the configured theme, or the default one.
func (b *Builder) themeName() string {
	if b.cfg.Theme == "" {
		return assets.DefaultTemplateSetName
	}
	return b.cfg.Theme
}

// Workers returns the resolved number of render workers.
func (b *Builder) Workers() int {
	return b.workers
}

// RenderArticle parses and renders a single article without writing
// anything. filename is the source file name without its extension.
// Returns ErrEmptyMarkdown for blank content.
func (b *Builder) RenderArticle(ctx context.Context, content, filename string) (*Article, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMarkdown
	}

	a := article.Parse(content, filename, b.cfg.DefaultAuthor)
	res, err := b.renderer.Render(ctx, a.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, filename, err)
	}
	a.RenderedHTML = res.HTML
	return &a, nil
}

// Build generates the whole site: one page per article, the index, the
// JSON manifest, the RSS feed, the stylesheet and the optional profile
// README. Files whose content did not change are not rewritten.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	cfg := b.cfg

	sources, err := discoverArticles(cfg.PostsPath, cfg.ArticleExt())
	if err != nil {
		return nil, fmt.Errorf("%w: %w%s", ErrReadArticle, err, hints.ForPostsDirectory())
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no *%s files under %s%s", ErrNoArticles, cfg.ArticleExt(), cfg.PostsPath, hints.ForPostsDirectory())
	}
	b.logger.Debug().Int("articles", len(sources)).Int("workers", b.workers).Msg("Rendering")

	var stats buildStats
	pages := make([]*page, len(sources))
	err = runJobs(ctx, b.workers, len(sources), func(ctx context.Context, idx int) error {
		p, err := b.buildPage(ctx, sources[idx], &stats)
		pages[idx] = p
		return err
	})
	if err != nil {
		return nil, err
	}

	listed, hidden := b.listedPages(pages)
	if len(listed) == 0 && hidden == 0 {
		return nil, fmt.Errorf("%w: every *%s file under %s is empty%s", ErrNoArticles, cfg.ArticleExt(), cfg.PostsPath, hints.ForPostsDirectory())
	}

	if err := b.writeIndex(listed, &stats); err != nil {
		return nil, err
	}
	if err := b.writeManifest(listed, &stats); err != nil {
		return nil, err
	}
	if err := b.writeFeed(listed, &stats); err != nil {
		return nil, err
	}
	if err := b.writeProfile(listed, &stats); err != nil {
		return nil, err
	}
	if err := b.write(filepath.Join(cfg.OutputPath, stylesheetFileName), []byte(b.stylesheet), &stats); err != nil {
		return nil, err
	}

	result := &BuildResult{
		Articles:  len(listed),
		Hidden:    hidden,
		Skipped:   int(stats.skipped.Load()),
		Written:   int(stats.written.Load()),
		Unchanged: int(stats.unchanged.Load()),
		Duration:  time.Since(start),
	}
	b.logger.Info().
		Int("articles", result.Articles).
		Int("hidden", result.Hidden).
		Int("written", result.Written).
		Int("unchanged", result.Unchanged).
		Dur("took", result.Duration).
		Msg("Build completed")
	return result, nil
}

// buildPage reads, renders and writes one article. Returns a nil page for
// an empty source file.
func (b *Builder) buildPage(ctx context.Context, src source, stats *buildStats) (*page, error) {
	content, err := os.ReadFile(src.Path) // #nosec G304 -- discovered under posts_path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadArticle, err)
	}

	a, err := b.RenderArticle(ctx, string(content), src.Stem)
	if errors.Is(err, ErrEmptyMarkdown) {
		stats.skipped.Add(1)
		b.logger.Warn().Str("path", src.Path).Msg("Skipped empty article")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ext := pageExt
	if a.Hidden() {
		ext = hiddenPageExt
	}
	a.URLPath = urlPath(src.RelDir, a.Filename+ext)

	p := &page{Article: *a, RelDir: src.RelDir}
	if p.Description, err = pipeline.Excerpt(a.RenderedHTML, excerptRunes); err != nil {
		b.logger.Debug().Err(err).Str("path", src.Path).Msg("No excerpt")
	}

	comment, err := b.commentWidget(p)
	if err != nil {
		return nil, err
	}
	out, err := b.article.Render(b.articleView(p, comment))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, src.Path, err)
	}

	outPath := filepath.Join(b.cfg.OutputPath, filepath.FromSlash(src.RelDir), a.Filename+ext)
	if err := b.write(outPath, []byte(out), stats); err != nil {
		return nil, err
	}
	return p, nil
}

// listedPages drops skipped and hidden pages and sorts the rest newest
// first, then by title. Returns the listing and the hidden count.
func (b *Builder) listedPages(pages []*page) ([]*page, int) {
	listed := make([]*page, 0, len(pages))
	hidden := 0
	for _, p := range pages {
		switch {
		case p == nil:
		case p.Hidden():
			hidden++
		default:
			listed = append(listed, p)
		}
	}

	slices.SortStableFunc(listed, func(x, y *page) int {
		if c := cmp.Compare(b.dateKey(y.Date), b.dateKey(x.Date)); c != 0 {
			return c
		}
		return cmp.Compare(x.Title, y.Title)
	})
	return listed, hidden
}

// dateKey normalizes parseable dates to YYYY-MM-DD so that "2024.3.5"
// sorts before "2024.03.10". Unparseable dates compare as written.
func (b *Builder) dateKey(date string) string {
	t, err := dateutil.ParseArticleDate(date, b.cfg.DateFormat)
	if err != nil {
		return date
	}
	return t.Format("2006-01-02")
}

// formatDate renders t in the configured date format. The format is
// checked by NewBuilder, so the ISO fallback only guards a mutated config.
func (b *Builder) formatDate(t time.Time) string {
	s, err := dateutil.ResolveDate("auto:"+b.cfg.DateFormat, t)
	if err != nil {
		return t.Format(time.DateOnly)
	}
	return s
}

func (b *Builder) writeIndex(listed []*page, stats *buildStats) error {
	cards, err := b.card.Render(b.listView(listed))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTemplate, assets.CardTemplateFile, err)
	}
	out, err := b.article.Render(b.indexView(cards))
	if err != nil {
		return fmt.Errorf("%w: index: %v", ErrTemplate, err)
	}
	return b.write(filepath.Join(b.cfg.OutputPath, indexFileName), []byte(out), stats)
}

func (b *Builder) writeManifest(listed []*page, stats *buildStats) error {
	data, err := buildManifest(listed)
	if err != nil {
		return err
	}
	return b.write(filepath.Join(b.cfg.OutputPath, manifestFileName), data, stats)
}

func (b *Builder) writeFeed(listed []*page, stats *buildStats) error {
	data, err := buildFeed(b.cfg, listed, b.now())
	if err != nil {
		return err
	}
	return b.write(filepath.Join(b.cfg.OutputPath, feedFileName), data, stats)
}

// writeProfile renders the newest articles into {profile_path}/README.md.
func (b *Builder) writeProfile(listed []*page, stats *buildStats) error {
	if b.cfg.ProfilePath == "" {
		return nil
	}
	if b.profile == nil {
		b.logger.Warn().Str("theme", b.themeName()).Msg("profile_path is set but the theme has no profile template")
		return nil
	}

	top := listed[:min(len(listed), b.cfg.ProfileLimit)]
	out, err := b.profile.Render(b.listView(top))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTemplate, assets.ProfileTemplateFile, err)
	}
	return b.write(filepath.Join(b.cfg.ProfilePath, profileFileName), []byte(out), stats)
}

// write stores data at path unless the file already holds it.
func (b *Builder) write(path string, data []byte, stats *buildStats) error {
	changed, err := fileutil.WriteIfChanged(path, data)
	if err != nil {
		return fmt.Errorf("%w: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	if changed {
		stats.written.Add(1)
		b.logger.Info().Msgf("Generated: %s", path)
		return nil
	}
	stats.unchanged.Add(1)
	b.logger.Debug().Msgf("Unchanged: %s", path)
	return nil
}
