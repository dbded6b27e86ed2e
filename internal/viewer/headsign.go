package viewer

import (
	"strings"

	"otpviewer.org/internal/otp"
)

// RouteIDResolver derives the id of the route a pattern belongs to.
type RouteIDResolver func(otp.Pattern) string

// HeadsignExtractor derives a headsign for a pattern whose stop times carry none.
type HeadsignExtractor func(otp.Pattern) string

// RouteIDForPattern returns the pattern's route id, or the feed and route
// segments of an OTP pattern code such as "1:100:0:01".
func RouteIDForPattern(p otp.Pattern) string {
	if p.Route != nil && p.Route.ID != "" {
		return p.Route.ID
	}
	parts := strings.SplitN(p.ID, ":", 3)
	if len(parts) < 2 {
		return p.ID
	}
	return parts[0] + ":" + parts[1]
}

// ExtractHeadsignFromPattern returns the pattern headsign, or parses the
// destination out of an OTP pattern name like "100 to Downtown (1:9) from Uptown (1:2)".
func ExtractHeadsignFromPattern(p otp.Pattern) string {
	if !isBlank(p.Headsign) {
		return p.Headsign
	}
	name := p.Name
	i := strings.Index(name, " to ")
	if i < 0 {
		return strings.TrimSpace(name)
	}
	dest := name[i+len(" to "):]
	if j := strings.Index(dest, " ("); j >= 0 {
		dest = dest[:j]
	} else if j := strings.Index(dest, " from "); j >= 0 {
		dest = dest[:j]
	}
	return strings.TrimSpace(dest)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
