package buildinfo

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X .../buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("linefit %s (commit=%s, date=%s, %s)", Version, Commit, Date, runtime.Version())
}
