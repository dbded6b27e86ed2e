package viewer

import (
	"cmp"
	"slices"

	"otpviewer.org/internal/otp"
)

// defaultStopColor is used for stops whose first route has no color.
const defaultStopColor = "666666"

// PatternStop is a stop as drawn along a route pattern.
type PatternStop struct {
	ID           string              `json:"id"`
	Code         string              `json:"code,omitempty"`
	Name         string              `json:"name,omitempty"`
	Lat          float64             `json:"lat"`
	Lon          float64             `json:"lon"`
	LocationType string              `json:"locationType,omitempty"`
	Geometries   *otp.StopGeometries `json:"geometries,omitempty"`
	Color        string              `json:"color,omitempty"`
}

// RoutePattern is a pattern ready for the route viewer.
type RoutePattern struct {
	ID       string            `json:"id"`
	Headsign string            `json:"headsign,omitempty"`
	Name     string            `json:"name,omitempty"`
	Desc     string            `json:"desc,omitempty"`
	Route    *otp.PatternRoute `json:"route,omitempty"`
	Stops    []PatternStop     `json:"stops"`
	Geometry otp.Geometry      `json:"geometry"`
}

// IsValidSubsequence reports whether every id of sub appears in seq in the
// same relative order. Gaps are allowed.
func IsValidSubsequence(seq, sub []string) bool {
	i := 0
	for _, id := range seq {
		if i == len(sub) {
			break
		}
		if id == sub[i] {
			i++
		}
	}
	return i == len(sub)
}

// DeduplicatePatterns drops every pattern whose stops are a subsequence of a
// longer pattern's stops. Survivors are returned longest first. When one
// pattern or none survives, the input is returned unfiltered.
func DeduplicatePatterns(patterns []otp.Pattern) []otp.Pattern {
	sorted := slices.Clone(patterns)
	slices.SortStableFunc(sorted, func(a, b otp.Pattern) int {
		return cmp.Compare(len(a.Stops), len(b.Stops))
	})
	slices.Reverse(sorted)

	ids := make([][]string, len(sorted))
	for i, p := range sorted {
		ids[i] = p.StopIDs()
	}

	filtered := make([]otp.Pattern, 0, len(sorted))
	for i, p := range sorted {
		covered := false
		for j, q := range sorted {
			if q.ID == p.ID || len(q.Stops) <= len(p.Stops) {
				continue
			}
			if IsValidSubsequence(ids[j], ids[i]) {
				covered = true
				break
			}
		}
		if !covered {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) <= 1 {
		return slices.Clone(patterns)
	}
	return filtered
}

// FilterRoutePatterns deduplicates the patterns of a route and prepares the
// survivors for display.
func FilterRoutePatterns(patterns []otp.Pattern) []RoutePattern {
	kept := DeduplicatePatterns(patterns)
	out := make([]RoutePattern, 0, len(kept))
	for _, p := range kept {
		out = append(out, toRoutePattern(p))
	}
	return out
}

func toRoutePattern(p otp.Pattern) RoutePattern {
	stops := make([]PatternStop, len(p.Stops))
	for i, s := range p.Stops {
		stops[i] = PatternStop{
			ID:           s.ID,
			Code:         s.Code,
			Name:         s.Name,
			Lat:          s.Lat,
			Lon:          s.Lon,
			LocationType: s.LocationType,
			Geometries:   s.Geometries,
			Color:        stopColor(s),
		}
	}

	rp := RoutePattern{
		ID:       p.ID,
		Headsign: p.Headsign,
		Name:     p.Name,
		Desc:     p.Name,
		Route:    p.Route,
		Stops:    stops,
	}
	if p.PatternGeometry != nil {
		rp.Geometry = *p.PatternGeometry
	}
	return rp
}

func stopColor(s otp.Stop) string {
	if len(s.Routes) == 0 {
		return ""
	}
	color := s.Routes[0].Color
	if color == "" {
		color = defaultStopColor
	}
	return "#" + color
}
