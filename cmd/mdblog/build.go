package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUnexpectedArgs = errors.New("unexpected arguments")
	ErrWatch          = errors.New("file watcher failed")
)

// runBuild generates the site once.
func runBuild(ctx context.Context, flags *cliFlags, env *Environment, logger zerolog.Logger) error {
	cfg, err := loadSiteConfig(flags, env)
	if err != nil {
		return err
	}

	b, err := newBuilder(cfg, env, logger)
	if err != nil {
		return err
	}

	_, err = b.Build(ctx)
	return err
}

// newBuilder creates a Builder wired to the CLI clock and logger.
func newBuilder(cfg *config.Config, env *Environment, logger zerolog.Logger) (*mdblog.Builder, error) {
	b, err := mdblog.NewBuilder(cfg, mdblog.WithLogger(logger), mdblog.WithNow(env.Now))
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("workers", b.Workers()).Str("output", cfg.OutputPath).Msg("Builder ready")
	return b, nil
}

// loadSiteConfig resolves the config name (flag, then MDBLOG_CONFIG, then
// "blog"), loads it and applies env and flag overrides.
func loadSiteConfig(flags *cliFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		name = defaultConfigName
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		var notFound *config.NotFoundError
		switch {
		case errors.As(err, &notFound):
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(notFound.Tried))
		case errors.Is(err, config.ErrConfigNotFound):
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
		}
		return nil, fmt.Errorf("loading config: %w%s", err, configHint(err))
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(&flags.site, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w%s", err, configHint(err))
	}
	return cfg, nil
}

// configHint returns the hint matching a config validation error.
func configHint(err error) string {
	switch {
	case errors.Is(err, config.ErrInvalidSiteURL):
		return hints.ForSiteURL()
	case errors.Is(err, config.ErrMissingField):
		msg := err.Error()
		return hints.ForMissingField(msg[strings.LastIndex(msg, ": ")+2:])
	}
	return ""
}
