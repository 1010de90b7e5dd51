package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/alnah/go-mdblog/internal/hints"
)

// debounceInterval is how long the source tree must stay quiet before a
// rebuild starts.
const debounceInterval = 500 * time.Millisecond

// runWatch builds the site, then rebuilds it whenever posts or assets
// change, until ctx is canceled. Rebuild failures are logged and watching
// continues.
func runWatch(ctx context.Context, flags *cliFlags, env *Environment, logger zerolog.Logger) error {
	cfg, err := loadSiteConfig(flags, env)
	if err != nil {
		return err
	}

	b, err := newBuilder(cfg, env, logger)
	if err != nil {
		return err
	}
	if _, err := b.Build(ctx); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w%s", ErrWatch, err, hints.ForWatcher())
	}
	defer func() { _ = w.Close() }()

	roots := []string{cfg.PostsPath}
	if cfg.AssetsPath != "" {
		roots = append(roots, cfg.AssetsPath)
	}
	for _, root := range roots {
		if err := addTree(w.Add, root); err != nil {
			return fmt.Errorf("%w: %w%s", ErrWatch, err, hints.ForWatcher())
		}
	}

	outputDir, _ := filepath.Abs(cfg.OutputPath)
	loop := &watchLoop{
		delay:  debounceInterval,
		logger: logger,
		addDir: w.Add,
		ignore: func(path string) bool {
			abs, err := filepath.Abs(path)
			return err == nil && outputDir != "" && isWithin(abs, outputDir)
		},
		rebuild: func(ctx context.Context) {
			// A fresh builder picks up edited templates and stylesheets.
			b, err := newBuilder(cfg, env, logger)
			if err != nil {
				logger.Error().Err(err).Msg("Rebuild failed")
				return
			}
			if _, err := b.Build(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("Rebuild failed")
			}
		},
	}

	logger.Info().Strs("paths", roots).Msg("Watching for changes, press Ctrl+C to stop")
	loop.run(ctx, w.Events, w.Errors)
	logger.Info().Msg("Stopped watching")
	return nil
}

// watchLoop turns bursts of filesystem events into single rebuilds.
type watchLoop struct {
	delay   time.Duration
	logger  zerolog.Logger
	addDir  func(string) error
	ignore  func(string) bool
	rebuild func(context.Context)
}

// run consumes events until ctx is done or a channel closes. Each relevant
// event restarts the debounce timer; the rebuild runs once it fires.
// Directories created while watching are added with their subdirectories.
func (l *watchLoop) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	timer := time.NewTimer(l.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if !l.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(l.addDir, ev.Name); err != nil {
						l.logger.Warn().Err(err).Str("path", ev.Name).Msg("Cannot watch new directory")
					}
				}
			}
			l.logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Change detected")
			timer.Reset(l.delay)

		case err, ok := <-errs:
			if !ok {
				return
			}
			l.logger.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			l.logger.Info().Msg("Rebuilding")
			l.rebuild(ctx)
		}
	}
}

// relevant filters out permission changes, dot-files such as editor swap
// files and atomic-write temporaries, and ignored paths.
func (l *watchLoop) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return l.ignore == nil || !l.ignore(ev.Name)
}

// addTree registers root and every non-hidden directory below it.
func addTree(add func(string) error, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// isWithin reports whether path is dir or lies below it. Both must be
// absolute and clean.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
