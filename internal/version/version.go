// Package version provides build-time version information.
package version

import "fmt"

// Set with -ldflags "-X plm-whiteboard/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version with its commit and build time.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
