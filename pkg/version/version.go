// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "dev"

	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"

	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()
)

// Platform returns the os/arch pair the binary was built for. Values are
// read from binaries of the same architecture and byte order only.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// String returns a one-line version summary.
func String() string {
	return fmt.Sprintf("libreflect %s (%s, %s, %s)", Version, GitCommit, GoVersion, Platform())
}
