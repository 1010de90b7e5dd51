package mdblog

import (
	"github.com/alnah/go-mdblog/internal/article"
	"github.com/alnah/go-mdblog/internal/assets"
	"github.com/alnah/go-mdblog/internal/config"
)

// Config is the site configuration. See LoadConfig.
type Config = config.Config

// Article is a parsed source file. RenderedHTML and URLPath are filled
// during the build.
type Article = article.Article

// AssetLoader provides themes and stylesheets.
type AssetLoader = assets.AssetLoader

// TemplateSet holds the mustache templates of one theme.
type TemplateSet = assets.TemplateSet

// LoadConfig loads and validates a config file by path or by name.
// A name is searched in the working directory and in the user config
// directory, with the .yaml, .yml and .toml extensions.
func LoadConfig(nameOrPath string) (*Config, error) {
	return config.LoadConfig(nameOrPath)
}

// DefaultConfig returns a configuration with every optional field set.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// NewAssetLoader creates a loader reading themes from basePath, falling
// back to the embedded themes. An empty basePath uses embedded themes only.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	return assets.NewAssetResolver(basePath)
}
