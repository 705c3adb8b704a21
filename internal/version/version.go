// Package version exposes the build identity stamped in at link time.
package version

//nolint:revive // Overridden through -ldflags on release builds.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
