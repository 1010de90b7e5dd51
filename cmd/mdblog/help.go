package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdblog [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Generate the site (default)")
	fmt.Fprintln(w, "  watch      Generate the site and rebuild on changes")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdblog help <command>' for details on a specific command.")
}

// printCommandUsage prints usage for build, watch and config.
func printCommandUsage(w io.Writer, cmd string) {
	fmt.Fprintf(w, "Usage: mdblog %s [flags]\n", cmd)
	fmt.Fprintln(w)
	switch cmd {
	case "watch":
		fmt.Fprintln(w, "Generate the site, then rebuild it whenever posts or assets change.")
		fmt.Fprintln(w, "Stop with Ctrl+C.")
	case "config":
		fmt.Fprintln(w, "Print the configuration after env and flag overrides, as YAML.")
	default:
		fmt.Fprintln(w, "Generate article pages, index.html, index.json, rss.xml and style.css.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: blog)")
	fmt.Fprintln(w, "  -p, --posts <dir>         Posts directory")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --assets <dir>        Custom themes and styles directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --sanitize            Sanitize rendered article HTML")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
	fmt.Fprintln(w, "      --no-color            Disable colored output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDBLOG_CONFIG, MDBLOG_POSTS_PATH, MDBLOG_OUTPUT_PATH,")
	fmt.Fprintln(w, "  MDBLOG_ASSETS_PATH, MDBLOG_WORKERS, NO_COLOR")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build", "watch", "config":
		printCommandUsage(env.Stdout, args[0])
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdblog version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdblog help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
