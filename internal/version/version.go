// Package version carries build metadata for the rosterd and deltawatch
// binaries, stamped at build time via ldflags:
//
//	go build -ldflags "-X github.com/draftpulse/rosterlive/internal/version.Version=1.0.0 \
//	                   -X github.com/draftpulse/rosterlive/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/draftpulse/rosterlive/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds report "dev", which also ends up in the REST client's
// User-Agent header.
package version

var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
