// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X downtag/internal/version.Version=1.0.0 \
//	  -X downtag/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X downtag/internal/version.Date=$(date +%Y%m%d-%H%M)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Full is the line printed by --version.
func Full() string {
	return fmt.Sprintf("downtag %s (%s, %s/%s) built %s with %s",
		Version, Commit, runtime.GOOS, runtime.GOARCH, Date, runtime.Version())
}
