package viewer

import (
	"maps"
	"slices"
	"strings"

	"github.com/twpayne/go-polyline"
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/otp"
)

const defaultRouteColor = "333333"

// Bounds is a lat/lon bounding box.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Extend grows b to include the point.
func (b *Bounds) Extend(lat, lon float64) {
	b.MinLat = min(b.MinLat, lat)
	b.MinLon = min(b.MinLon, lon)
	b.MaxLat = max(b.MaxLat, lat)
	b.MaxLon = max(b.MaxLon, lon)
}

// RouteDetail is a route as shown by the route viewer, with its patterns
// deduplicated and keyed by id.
type RouteDetail struct {
	ID           string                  `json:"id"`
	Agency       *otp.Agency             `json:"agency,omitempty"`
	ShortName    string                  `json:"shortName,omitempty"`
	LongName     string                  `json:"longName,omitempty"`
	Desc         string                  `json:"desc,omitempty"`
	Mode         string                  `json:"mode,omitempty"`
	Type         int                     `json:"type"`
	Color        string                  `json:"color,omitempty"`
	OrigColor    string                  `json:"origColor,omitempty"`
	TextColor    string                  `json:"textColor,omitempty"`
	URL          string                  `json:"url,omitempty"`
	BikesAllowed string                  `json:"bikesAllowed,omitempty"`
	Patterns     map[string]RoutePattern `json:"patterns"`
	Bounds       *Bounds                 `json:"bounds,omitempty"`
	V2           bool                    `json:"v2"`
}

// RouteSummary is an entry of the route list.
type RouteSummary struct {
	ID         string `json:"id"`
	AgencyID   string `json:"agencyId,omitempty"`
	AgencyName string `json:"agencyName,omitempty"`
	ShortName  string `json:"shortName,omitempty"`
	LongName   string `json:"longName,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Type       int    `json:"type"`
	Color      string `json:"color,omitempty"`
	OrigColor  string `json:"origColor,omitempty"`
}

// BuildRouteDetail prepares a route for the route viewer.
func BuildRouteDetail(route otp.Route, cfg appconf.ViewerConfig) RouteDetail {
	var agency *otp.Agency
	if route.Agency != nil {
		a := *route.Agency
		agency = &a
	}

	detail := RouteDetail{
		ID:           route.ID,
		Agency:       agency,
		ShortName:    route.ShortName,
		LongName:     route.LongName,
		Desc:         route.Desc,
		Type:         route.Type,
		OrigColor:    route.Color,
		TextColor:    route.TextColor,
		URL:          route.URL,
		BikesAllowed: route.BikesAllowed,
		Patterns:     make(map[string]RoutePattern, len(route.Patterns)),
		V2:           true,
	}

	for _, p := range FilterRoutePatterns(route.Patterns) {
		detail.Patterns[p.ID] = p
		if b, ok := GeometryBounds(p.Geometry.Points); ok {
			detail.Bounds = mergeBounds(detail.Bounds, b)
		}
	}

	op := RouteOperator(cfg.TransitOperators, agencyID(route.Agency), route.ID)
	detail.Color = RouteColor(op, route.Color, route.Mode)
	detail.Mode = ModeForRoute(route.ID, route.Mode, cfg.RouteModeOverrides)
	return detail
}

// BuildRouteSummaries keys the routes by id.
func BuildRouteSummaries(routes []otp.Route, cfg appconf.ViewerConfig) map[string]RouteSummary {
	out := make(map[string]RouteSummary, len(routes))
	for _, r := range routes {
		s := RouteSummary{
			ID:        r.ID,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Type:      r.Type,
			OrigColor: r.Color,
			Mode:      ModeForRoute(r.ID, r.Mode, cfg.RouteModeOverrides),
		}
		if r.Agency != nil {
			s.AgencyID = r.Agency.ID
			s.AgencyName = r.Agency.Name
		}
		s.Color = RouteColor(RouteOperator(cfg.TransitOperators, s.AgencyID, r.ID), r.Color, r.Mode)
		out[r.ID] = s
	}
	return out
}

// StopsForRoute returns the stops to draw for a route, one entry per stop id.
// With a pattern id the stops of that pattern are returned; otherwise the
// flex zones of every pattern.
func StopsForRoute(detail RouteDetail, patternID string) []PatternStop {
	seen := map[string]bool{}
	stops := []PatternStop{}

	if patternID != "" {
		p, ok := detail.Patterns[patternID]
		if !ok {
			return stops
		}
		for _, s := range p.Stops {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			stops = append(stops, s)
		}
		return stops
	}

	for _, id := range slices.Sorted(maps.Keys(detail.Patterns)) {
		for _, s := range detail.Patterns[id].Stops {
			if seen[s.ID] || s.Geometries.GeoJSONType() != "Polygon" {
				continue
			}
			seen[s.ID] = true
			stops = append(stops, s)
		}
	}
	return stops
}

// RouteOperator finds the transit operator configured for a route. An
// operator with a feed id only matches routes of that feed.
func RouteOperator(operators []appconf.TransitOperator, agencyID, routeID string) *appconf.TransitOperator {
	for i := range operators {
		op := &operators[i]
		if op.AgencyID != agencyID {
			continue
		}
		if op.FeedID != "" && !strings.HasPrefix(routeID, op.FeedID+":") {
			continue
		}
		return op
	}
	return nil
}

// RouteColor picks the display color of a route, without the leading '#'.
func RouteColor(op *appconf.TransitOperator, color, mode string) string {
	pick := func(candidates ...string) string {
		for _, c := range candidates {
			if c = strings.TrimPrefix(strings.TrimSpace(c), "#"); c != "" {
				return c
			}
		}
		return defaultRouteColor
	}
	if op == nil {
		return pick(color)
	}
	modeColor := op.ModeColors[mode]
	if op.ColorMode == "override" {
		return pick(modeColor, op.DefaultRouteColor, color)
	}
	return pick(modeColor, color, op.DefaultRouteColor)
}

// ModeForRoute applies the configured mode override for a route.
func ModeForRoute(routeID, mode string, overrides map[string]string) string {
	if m, ok := overrides[routeID]; ok && m != "" {
		return m
	}
	return mode
}

// GeometryBounds decodes an encoded polyline into its bounding box.
func GeometryBounds(points string) (Bounds, bool) {
	if points == "" {
		return Bounds{}, false
	}
	coords, _, err := polyline.DecodeCoords([]byte(points))
	if err != nil || len(coords) == 0 {
		return Bounds{}, false
	}
	b := Bounds{MinLat: coords[0][0], MinLon: coords[0][1], MaxLat: coords[0][0], MaxLon: coords[0][1]}
	for _, c := range coords[1:] {
		b.Extend(c[0], c[1])
	}
	return b, true
}

func mergeBounds(acc *Bounds, b Bounds) *Bounds {
	if acc == nil {
		return &b
	}
	acc.Extend(b.MinLat, b.MinLon)
	acc.Extend(b.MaxLat, b.MaxLon)
	return acc
}

func agencyID(a *otp.Agency) string {
	if a == nil {
		return ""
	}
	return a.ID
}
