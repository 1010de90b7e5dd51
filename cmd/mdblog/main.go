package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// defaultConfigName is searched in ./ and ~/.config/go-mdblog/ when neither
// --config nor MDBLOG_CONFIG is given.
const defaultConfigName = "blog"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	cmd, rest := splitCommand(args[1:])

	switch cmd {
	case "version":
		fmt.Fprintf(env.Stdout, "go-mdblog %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "build", "watch", "config":
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	flags, err := parseFlags(cmd, rest, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	logger := newLogger(env.Stderr, flags.common, env.Getenv)
	warnUnknownEnvVars(logger, env.Environ())

	ctx, stop := notifyContext(context.Background())
	defer stop()

	switch cmd {
	case "build":
		err = runBuild(ctx, flags, env, logger)
	case "watch":
		err = runWatch(ctx, flags, env, logger)
	case "config":
		err = runConfig(flags, env)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

// splitCommand separates the subcommand from its arguments. Without a
// command, or when the first argument is a flag, the command is build.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || len(args[0]) > 0 && args[0][0] == '-' {
		return "build", args
	}
	return args[0], args[1:]
}
