// Package version holds build information set through -ldflags at release time.
package version

// Build information reported by /version, quizctl version and the OTel service resource
var (
	Version   = "dev"
	Commit    = "dev"
	BuildTime = "unknown"
)
