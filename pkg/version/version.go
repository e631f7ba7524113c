// Package version provides version metadata for the application.
package version

import "fmt"

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of osfiler.
	Version = "dev"
	// Commit holds the current version commit of osfiler.
	Commit = "none"
	// BuildDate holds the build date of osfiler.
	BuildDate = "unknown"
)

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Get returns the build version information.
func Get() Struct {
	return Struct{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("OSFiler %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}
