package mediameta

import "runtime"

// Version is the release of the extractor. The mediameta command reports
// it alongside the build details below.
const Version = "0.1.0"

// GetVersion returns Version.
func GetVersion() string {
	return Version
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	// GoVersion falls back to the runtime version when not stamped.
	GoVersion string
}

// GetVersionInfo returns the build details stamped into the binary.
//
// Release builds of the command set them with -ldflags:
//
//	go build -ldflags="-X github.com/simonhull/mediameta.gitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/simonhull/mediameta.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/mediameta
//
// Unstamped fields read "unknown".
func GetVersionInfo() VersionInfo {
	goVer := goVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: goVer,
	}
}

// Set with -ldflags -X when building cmd/mediameta.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)
