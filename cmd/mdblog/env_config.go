package main

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdblog/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the config file.
type envConfig struct {
	ConfigPath string // MDBLOG_CONFIG: config name or path
	PostsPath  string // MDBLOG_POSTS_PATH: article source directory
	OutputPath string // MDBLOG_OUTPUT_PATH: generated site directory
	AssetsPath string // MDBLOG_ASSETS_PATH: custom theme directory
	Workers    int    // MDBLOG_WORKERS: parallel render workers
}

// knownEnvVars lists valid MDBLOG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDBLOG_CONFIG":      true,
	"MDBLOG_POSTS_PATH":  true,
	"MDBLOG_OUTPUT_PATH": true,
	"MDBLOG_ASSETS_PATH": true,
	"MDBLOG_WORKERS":     true,
}

// loadEnvConfig reads the recognized MDBLOG_* variables through getenv.
// Malformed or non-positive worker counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MDBLOG_CONFIG"),
		PostsPath:  getenv("MDBLOG_POSTS_PATH"),
		OutputPath: getenv("MDBLOG_OUTPUT_PATH"),
		AssetsPath: getenv("MDBLOG_ASSETS_PATH"),
	}

	if workers := getenv("MDBLOG_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized MDBLOG_* variable.
func warnUnknownEnvVars(logger zerolog.Logger, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "MDBLOG_") {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warn().Str("variable", name).Msg("Unknown environment variable (typo?)")
		}
	}
}

// applyEnvConfig overrides config file values with the variables that are
// set. Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.PostsPath != "" {
		cfg.PostsPath = env.PostsPath
	}
	if env.OutputPath != "" {
		cfg.OutputPath = env.OutputPath
	}
	if env.AssetsPath != "" {
		cfg.AssetsPath = env.AssetsPath
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
