// Package version holds casematch build metadata, set with -ldflags "-X".
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build for `casematch --version`, e.g. "1.2.0 (abc1234, built 2026-01-01)".
// The build date is left out when it was not injected.
func String() string {
	if Date == "" || Date == "unknown" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
