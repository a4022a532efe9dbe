// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/volumetrics/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the release tag of the volumetrics binary
	Version = "dev"
	// GitSHA is the commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("volumetrics %s (%s, built %s)", Version, GitSHA, BuildTime)
}
