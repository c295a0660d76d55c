package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/gameserverkit/gsinstall/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/gameserverkit/gsinstall/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/gameserverkit/gsinstall/internal/version.Date={{.Date}}
)
