package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/MrSnakeDoc/seek/internal/version.Version=v0.1.0 ..."
var (
	Version   = "dev"     // ex: v0.1.0
	Commit    = "none"    // ex: abcd123
	BuildDate = "unknown" // ex: 2026-10-18T09:00:00Z
	GoVersion = runtime.Version()
)

// String is the one-line build description printed by the binary.
func String() string {
	return fmt.Sprintf("seek %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
