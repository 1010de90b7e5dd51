package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdblog"
	"github.com/alnah/go-mdblog/internal/assets"
	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/dateutil"
)

// Exit codes for the mdblog CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Site generated
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or theme
	ExitIO      = 3 // Unreadable posts, unwritable output
	ExitRender  = 4 // Markdown or template rendering errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 4)
	if errors.Is(err, mdblog.ErrRender) ||
		errors.Is(err, mdblog.ErrTemplate) {
		return ExitRender
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrMissingField) ||
		errors.Is(err, config.ErrInvalidSiteURL) ||
		errors.Is(err, config.ErrInvalidLanguage) ||
		errors.Is(err, config.ErrInvalidFormat) ||
		errors.Is(err, config.ErrInvalidLimit) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, mdblog.ErrInvalidConfig) ||
		errors.Is(err, mdblog.ErrInvalidWorkers) ||
		errors.Is(err, mdblog.ErrAssets) ||
		errors.Is(err, assets.ErrTemplateSetNotFound) ||
		errors.Is(err, assets.ErrIncompleteTemplateSet) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, ErrUnexpectedArgs) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdblog.ErrReadArticle) ||
		errors.Is(err, mdblog.ErrWriteOutput) ||
		errors.Is(err, mdblog.ErrNoArticles) ||
		errors.Is(err, ErrWatch) {
		return ExitIO
	}

	return ExitGeneral
}
