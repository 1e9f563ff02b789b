// Package version provides build-time version information for netsampler.
// Variables are injected at build time via ldflags.
package version

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string suitable for version output.
func Info() string {
	return fmt.Sprintf("netsampler %s (commit: %s, built: %s, go: %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string (e.g., "0.1.0" or "dev").
func Short() string {
	return Version
}

// Map returns version info as a map for JSON serialization.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}
}

// Fields returns the build identity as log fields, attached once to the
// process logger so every line can be traced to a build.
func Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", Version),
		zap.String("commit", GitCommit),
	}
}

// Labels returns the build identity as metric label values, in the order of
// LabelNames.
func Labels() []string {
	return []string{Version, GitCommit, runtime.Version()}
}

// LabelNames names the values returned by Labels.
var LabelNames = []string{"version", "commit", "go_version"}
