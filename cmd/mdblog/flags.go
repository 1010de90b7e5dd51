package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdblog/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// siteFlags override config file values. The *Set fields record whether
// a flag was given, since the zero value is a valid setting.
type siteFlags struct {
	output      string
	posts       string
	assets      string
	workers     int
	workersSet  bool
	sanitize    bool
	sanitizeSet bool
}

// cliFlags holds all flags for the build, watch and config commands.
type cliFlags struct {
	common commonFlags
	site   siteFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addSiteFlags adds config override flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.posts, "posts", "p", "", "posts directory")
	fs.StringVar(&f.assets, "assets", "", "custom assets directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.sanitize, "sanitize", false, "sanitize rendered article HTML")
}

// parseFlags parses the flags of cmd. Positional arguments are rejected.
// Returns flag.ErrHelp when -h or --help was given.
func parseFlags(cmd string, args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)

	fs.Usage = func() { printCommandUsage(stderr, cmd) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(fs.Args(), " "))
	}

	f.site.workersSet = fs.Changed("workers")
	f.site.sanitizeSet = fs.Changed("sanitize")
	return f, nil
}

// mergeFlags applies the flags that were given over cfg (CLI wins).
func mergeFlags(f *siteFlags, cfg *config.Config) {
	if f.posts != "" {
		cfg.PostsPath = f.posts
	}
	if f.output != "" {
		cfg.OutputPath = f.output
	}
	if f.assets != "" {
		cfg.AssetsPath = f.assets
	}
	if f.workersSet {
		cfg.Workers = f.workers
	}
	if f.sanitizeSet {
		cfg.Sanitize = f.sanitize
	}
}
