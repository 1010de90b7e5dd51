// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdblog/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForWatcher returns hints for file watcher failures.
// Inside containers, bind-mounted sources often deliver no events.
func ForWatcher() string {
	hints := []string{"raise fs.inotify.max_user_watches if the watch limit is reached"}

	inCI := os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
	if inCI || IsInContainer() {
		hints = append(hints, "watching is unreliable in CI/containers, use `mdblog build`")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdblog/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/blog.yaml or set MDBLOG_CONFIG"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-mdblog") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForMissingField returns a hint naming the config key to set.
func ForMissingField(field string) string {
	if field == "" {
		return ""
	}
	return format("set " + field + " in the config file")
}

// ForSiteURL returns a hint about the expected site URL shape.
func ForSiteURL() string {
	return format(`site_url must be absolute, e.g. "https://blog.example.com"`)
}

// ForPostsDirectory returns hints for an unreadable posts directory.
func ForPostsDirectory() string {
	return format("check posts_path in the config or pass --posts")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForThemeNotFound returns hints for theme not found errors.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
