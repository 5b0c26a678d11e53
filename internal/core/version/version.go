// Package version provides information about the build version of the binaries.
package version

// BuildInfo holds version information about the running build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'vigil/internal/core/version.version=v0.1.0'
	// -X 'vigil/internal/core/version.commit=abcd' -X 'vigil/internal/core/version.date=2026-01-15'"
	return BuildInfo{
		Service: "vigil",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
