package viewer

import "otpviewer.org/internal/otp"

func pattern(id string, stopIDs ...string) otp.Pattern {
	p := otp.Pattern{ID: id}
	for _, s := range stopIDs {
		p.Stops = append(p.Stops, otp.Stop{ID: s})
	}
	return p
}

func patternIDs(patterns []otp.Pattern) []string {
	ids := make([]string, len(patterns))
	for i, p := range patterns {
		ids[i] = p.ID
	}
	return ids
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
