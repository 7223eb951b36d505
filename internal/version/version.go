/*
Package version provides build information for paloma.

Values are set via ldflags during build:

	go build -ldflags "-X github.com/khanglvm/paloma/internal/version.Version=v0.3.0 \
	  -X github.com/khanglvm/paloma/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/paloma/internal/version.Date=$(date -u +%Y-%m-%d)"

Without ldflags the build reports itself as "dev".
*/
package version

var (
	// Version is the release tag (e.g., v0.3.0)
	Version = "dev"
	// Commit is the git commit hash (short form)
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// Info is the build information reported by the CLI and the JSON-RPC
// initialize handshake.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// IsDev reports whether this is a build without release ldflags.
func (i Info) IsDev() bool {
	return i.Version == "dev"
}

// String formats the build information for --version.
func (i Info) String() string {
	if i.IsDev() {
		return i.Version + " (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}

// GetVersion returns the formatted build information.
func GetVersion() string {
	return Get().String()
}
