package buildinfo

import "time"

// Set via -ldflags at build time
var (
	Version    = "dev"
	CommitHash string // short git commit hash
	BuildTime  string
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC()

// String renders the version with its commit when known
func String() string {
	if CommitHash == "" {
		return Version
	}
	return Version + "+" + CommitHash
}
