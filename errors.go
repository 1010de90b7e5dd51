package mdblog

import "errors"

// Sentinel errors for site builds.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrRender         = errors.New("article rendering failed")
	ErrTemplate       = errors.New("template rendering failed")
	ErrReadArticle    = errors.New("failed to read article")
	ErrWriteOutput    = errors.New("failed to write output")
	ErrNoArticles     = errors.New("no articles found")
	ErrInvalidWorkers = errors.New("invalid worker count")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrAssets         = errors.New("failed to load theme assets")
)
