package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/alnah/go-mdblog/internal/dateutil"
	"github.com/alnah/go-mdblog/internal/fileutil"
	"github.com/alnah/go-mdblog/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrMissingField    = errors.New("required field is missing")
	ErrInvalidSiteURL  = errors.New("invalid site URL")
	ErrInvalidLanguage = errors.New("invalid site language")
	ErrInvalidFormat   = errors.New("invalid article format")
	ErrInvalidLimit    = errors.New("invalid limit")
)

// Field length limits.
const (
	MaxNameLength        = 100  // Site name, author
	MaxDescriptionLength = 500  // Site description
	MaxURLLength         = 2048 // Browser limit
	MaxEmailLength       = 254  // RFC 5321
	MaxIDLength          = 100  // Analytics and giscus identifiers
	MaxPathLength        = 4096 // PATH_MAX on Linux
	MaxFormatLength      = 16   // "md", "markdown"
	MaxWorkers           = 64
)

// Defaults applied before a config file is decoded.
const (
	DefaultLanguage       = "zh-CN"
	DefaultArticleFormat  = "md"
	DefaultTheme          = "default"
	DefaultHighlightStyle = "monokai"
	DefaultDateFormat     = "YYYY.MM.DD"
	DefaultRSSLimit       = 20
	DefaultProfileLimit   = 5
	DefaultPostsPath      = "posts"
	DefaultOutputPath     = "public"
)

// languagePattern accepts BCP 47 shaped tags: "en", "zh-CN", "sr-Latn-RS".
var languagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// Config holds the site configuration.
type Config struct {
	SiteName        string `yaml:"site_name" toml:"site_name"`
	SiteURL         string `yaml:"site_url" toml:"site_url"`
	SiteDescription string `yaml:"site_description" toml:"site_description"`
	SiteLanguage    string `yaml:"site_language" toml:"site_language"`

	PostsPath     string `yaml:"posts_path" toml:"posts_path"`
	OutputPath    string `yaml:"output_path" toml:"output_path"`
	ProfilePath   string `yaml:"profile_path" toml:"profile_path"`     // Empty = no profile README
	ArticleFormat string `yaml:"article_format" toml:"article_format"` // Extension without dot

	DefaultAuthor string `yaml:"default_author" toml:"default_author"`
	WebMaster     string `yaml:"web_master" toml:"web_master"`

	// Giscus comments are enabled only when all four fields are set.
	GithubRepo       string `yaml:"github_repo" toml:"github_repo"`
	GithubRepoID     string `yaml:"github_repo_id" toml:"github_repo_id"`
	GiscusCategory   string `yaml:"giscus_category" toml:"giscus_category"`
	GiscusCategoryID string `yaml:"giscus_category_id" toml:"giscus_category_id"`

	GoogleAnalyticsID string `yaml:"google_analytics_id" toml:"google_analytics_id"`

	Theme            string `yaml:"theme" toml:"theme"`
	AssetsPath       string `yaml:"assets_path" toml:"assets_path"` // Empty = embedded assets
	HighlightStyle   string `yaml:"highlight_style" toml:"highlight_style"`
	HighlightClasses bool   `yaml:"highlight_classes" toml:"highlight_classes"`
	Sanitize         bool   `yaml:"sanitize" toml:"sanitize"`
	DateFormat       string `yaml:"date_format" toml:"date_format"`
	RSSLimit         int    `yaml:"rss_limit" toml:"rss_limit"`
	ProfileLimit     int    `yaml:"profile_limit" toml:"profile_limit"`
	Workers          int    `yaml:"workers" toml:"workers"` // 0 = GOMAXPROCS
}

// DefaultConfig returns a configuration with every optional field at its
// default. Site name and URL are left empty and must be provided.
func DefaultConfig() *Config {
	return &Config{
		SiteLanguage:   DefaultLanguage,
		PostsPath:      DefaultPostsPath,
		OutputPath:     DefaultOutputPath,
		ArticleFormat:  DefaultArticleFormat,
		Theme:          DefaultTheme,
		HighlightStyle: DefaultHighlightStyle,
		DateFormat:     DefaultDateFormat,
		RSSLimit:       DefaultRSSLimit,
		ProfileLimit:   DefaultProfileLimit,
	}
}

// GiscusEnabled reports whether the comment widget can be rendered.
func (c *Config) GiscusEnabled() bool {
	return c.GithubRepo != "" && c.GithubRepoID != "" &&
		c.GiscusCategory != "" && c.GiscusCategoryID != ""
}

// ArticleExt returns the article file extension with its leading dot.
func (c *Config) ArticleExt() string {
	return "." + strings.TrimPrefix(c.ArticleFormat, ".")
}

// BaseURL returns the site URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.SiteURL, "/")
}

// Validate checks required fields, formats and limits. A date_format
// naming a preset ("iso", "dotted", ...) is expanded in place.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"site_name", c.SiteName},
		{"site_url", c.SiteURL},
		{"posts_path", c.PostsPath},
		{"output_path", c.OutputPath},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, r.name)
		}
	}

	lengths := []struct {
		name  string
		value string
		max   int
	}{
		{"site_name", c.SiteName, MaxNameLength},
		{"site_url", c.SiteURL, MaxURLLength},
		{"site_description", c.SiteDescription, MaxDescriptionLength},
		{"posts_path", c.PostsPath, MaxPathLength},
		{"output_path", c.OutputPath, MaxPathLength},
		{"profile_path", c.ProfilePath, MaxPathLength},
		{"assets_path", c.AssetsPath, MaxPathLength},
		{"article_format", c.ArticleFormat, MaxFormatLength},
		{"default_author", c.DefaultAuthor, MaxNameLength},
		{"web_master", c.WebMaster, MaxEmailLength},
		{"github_repo", c.GithubRepo, MaxNameLength},
		{"github_repo_id", c.GithubRepoID, MaxIDLength},
		{"giscus_category", c.GiscusCategory, MaxNameLength},
		{"giscus_category_id", c.GiscusCategoryID, MaxIDLength},
		{"google_analytics_id", c.GoogleAnalyticsID, MaxIDLength},
		{"theme", c.Theme, MaxNameLength},
		{"highlight_style", c.HighlightStyle, MaxNameLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.name, l.value, l.max); err != nil {
			return err
		}
	}

	u, err := url.Parse(c.SiteURL)
	if !fileutil.IsURL(c.SiteURL) || err != nil || u.Host == "" {
		return fmt.Errorf("%w: %q (must be an absolute http or https URL)", ErrInvalidSiteURL, c.SiteURL)
	}

	if c.SiteLanguage != "" && !languagePattern.MatchString(c.SiteLanguage) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.SiteLanguage)
	}

	format := strings.TrimPrefix(c.ArticleFormat, ".")
	if err := fileutil.ValidateExtension(format); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidFormat, c.ArticleFormat, err)
	}
	if strings.ContainsAny(format, ". ") {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.ArticleFormat)
	}

	if preset, ok := dateutil.DatePresets[strings.ToLower(c.DateFormat)]; ok {
		c.DateFormat = preset
	}
	if _, err := dateutil.ParseDateFormat(c.DateFormat); err != nil {
		return fmt.Errorf("date_format: %w", err)
	}

	if c.RSSLimit < 0 {
		return fmt.Errorf("%w: rss_limit must be >= 0, got %d", ErrInvalidLimit, c.RSSLimit)
	}
	if c.ProfileLimit < 0 {
		return fmt.Errorf("%w: profile_limit must be >= 0, got %d", ErrInvalidLimit, c.ProfileLimit)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidLimit, MaxWorkers, c.Workers)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// configExtensions are tried in order when resolving a config by name.
var configExtensions = []string{".yaml", ".yml", ".toml"}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a config extension, it's
// treated as a file path. Otherwise, it's treated as a config name and
// searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) || hasConfigExtension(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes config data over the defaults. ext selects the syntax:
// ".toml" for TOML, anything else for YAML. Unknown keys are rejected.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.EqualFold(ext, ".toml") {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown fields: %s", ErrConfigParse, strings.Join(keys, ", "))
		}
		return cfg, nil
	}

	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

func hasConfigExtension(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	for _, e := range configExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/go-mdblog/
func resolveConfigPath(name string) (string, error) {
	triedPaths := make([]string, 0, len(configExtensions)*2) // 2 locations

	for _, ext := range configExtensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range configExtensions {
			userPath := filepath.Join(userConfigDir, "go-mdblog", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Name: name, Tried: triedPaths}
}

// NotFoundError lists every location searched for a named config.
// It matches ErrConfigNotFound with errors.Is.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}
