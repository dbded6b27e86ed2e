// Package buildinfo carries version details injected at link time with
// -ldflags "-X otpviewer.org/internal/buildinfo.Version=...".
package buildinfo

var (
	Version    = "dev"
	CommitHash = ""
	Branch     = ""
	BuildTime  = ""
	Dirty      = "false"
)

// ShortCommit returns the abbreviated commit hash, or "unknown".
func ShortCommit() string {
	if len(CommitHash) >= 7 {
		return CommitHash[:7]
	}
	return "unknown"
}
