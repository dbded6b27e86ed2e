package viewer

import (
	"slices"

	"otpviewer.org/internal/otp"
)

// NearbyResult is the answer of the nearby view for a point.
type NearbyResult struct {
	Lat   float64          `json:"lat"`
	Lon   float64          `json:"lon"`
	Nodes []otp.NearbyNode `json:"nodes"`
}

// MergeSameStops folds nearby results that share a stop code into the first
// of them. Results without a code are never merged.
func MergeSameStops(nodes []otp.NearbyNode) []otp.NearbyNode {
	out := make([]otp.NearbyNode, 0, len(nodes))
	byCode := map[string]int{}
	for _, node := range nodes {
		code := node.Place.Code
		if i, ok := byCode[code]; ok && code != "" {
			existing := &out[i].Place
			existing.StoptimesForPatterns = append(slices.Clip(existing.StoptimesForPatterns),
				node.Place.StoptimesForPatterns...)
			continue
		}
		if _, ok := byCode[code]; !ok {
			byCode[code] = len(out)
		}
		out = append(out, node)
	}
	return out
}

// NearbyStop is a stop around a focus stop, tagged with its agency.
type NearbyStop struct {
	otp.Stop
	AgencyID   string `json:"agencyId,omitempty"`
	AgencyName string `json:"agencyName,omitempty"`
}

// NearbyStopsResult lists the stops around a focus stop.
type NearbyStopsResult struct {
	FocusStopID string       `json:"focusStopId"`
	Stops       []NearbyStop `json:"stops"`
}

// NearbyStops attaches the agency of each stop's first route.
func NearbyStops(focusStopID string, stops []otp.Stop) NearbyStopsResult {
	result := NearbyStopsResult{FocusStopID: focusStopID, Stops: make([]NearbyStop, 0, len(stops))}
	for _, s := range stops {
		ns := NearbyStop{Stop: s}
		if len(s.Routes) > 0 && s.Routes[0].Agency != nil {
			ns.AgencyID = s.Routes[0].Agency.ID
			ns.AgencyName = s.Routes[0].Agency.Name
		}
		result.Stops = append(result.Stops, ns)
	}
	return result
}
