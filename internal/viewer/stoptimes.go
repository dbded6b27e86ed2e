package viewer

import (
	"cmp"
	"slices"

	"otpviewer.org/internal/otp"
)

// DetailedStopTime is a stop time with its headsign resolved and its route
// and block attached.
type DetailedStopTime struct {
	otp.StopTime
	BlockID string     `json:"blockId,omitempty"`
	Route   *otp.Route `json:"route,omitempty"`
}

// StopTimesGroup gathers the stop times of every pattern that shares a route
// and a rider facing headsign.
type StopTimesGroup struct {
	ID       string         `json:"id"`
	Headsign string         `json:"headsign"`
	Pattern  otp.Pattern    `json:"pattern"`
	Route    *otp.Route     `json:"route,omitempty"`
	Times    []otp.StopTime `json:"times"`
}

// Reconciler merges the per-pattern departures of a stop.
type Reconciler struct {
	RouteID  RouteIDResolver
	Headsign HeadsignExtractor
}

// NewReconciler returns a Reconciler using the OTP naming conventions.
func NewReconciler() *Reconciler {
	return &Reconciler{
		RouteID:  RouteIDForPattern,
		Headsign: ExtractHeadsignFromPattern,
	}
}

// Group keys every pattern by "{routeId}-{headsign}" and concatenates the
// stop times of patterns sharing a key. Groups keep first-seen order.
// A nil route list yields no groups.
func (r *Reconciler) Group(routes []otp.Route, stoptimes []otp.StoptimesInPattern) []StopTimesGroup {
	if routes == nil || len(stoptimes) == 0 {
		return []StopTimesGroup{}
	}
	resolveRoute := r.RouteID
	if resolveRoute == nil {
		resolveRoute = RouteIDForPattern
	}
	extract := r.Headsign
	if extract == nil {
		extract = ExtractHeadsignFromPattern
	}

	groups := make([]StopTimesGroup, 0, len(stoptimes))
	index := make(map[string]int, len(stoptimes))
	for _, entry := range stoptimes {
		routeID := resolveRoute(entry.Pattern)

		var headsign string
		if len(entry.Stoptimes) > 0 {
			headsign = entry.Stoptimes[0].Headsign
		}
		if isBlank(headsign) {
			headsign = extract(entry.Pattern)
		}

		key := routeID + "-" + headsign
		i, ok := index[key]
		if !ok {
			pattern := entry.Pattern
			pattern.Headsign = headsign
			groups = append(groups, StopTimesGroup{
				ID:       key,
				Headsign: headsign,
				Pattern:  pattern,
				Route:    findRoute(routes, routeID),
				Times:    []otp.StopTime{},
			})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Times = append(groups[i].Times, entry.Stoptimes...)
	}
	return groups
}

// MergeAndSort flattens the groups of a stop into one list ordered by
// effective departure. Entries departing at the same instant keep their order.
func (r *Reconciler) MergeAndSort(routes []otp.Route, stoptimes []otp.StoptimesInPattern) []DetailedStopTime {
	groups := r.Group(routes, stoptimes)

	var total int
	for _, g := range groups {
		total += len(g.Times)
	}
	merged := make([]DetailedStopTime, 0, total)
	for _, g := range groups {
		for _, st := range g.Times {
			if isBlank(st.Headsign) {
				st.Headsign = g.Headsign
			}
			detailed := DetailedStopTime{StopTime: st, Route: g.Route}
			if st.Trip != nil {
				detailed.BlockID = st.Trip.BlockID
			}
			merged = append(merged, detailed)
		}
	}

	slices.SortStableFunc(merged, func(a, b DetailedStopTime) int {
		return cmp.Compare(EffectiveDeparture(a.StopTime), EffectiveDeparture(b.StopTime))
	})
	return merged
}

// MergeAndSortStopTimes runs the default Reconciler over a stop.
func MergeAndSortStopTimes(stop *otp.Stop) []DetailedStopTime {
	if stop == nil {
		return []DetailedStopTime{}
	}
	return NewReconciler().MergeAndSort(stop.Routes, stop.StoptimesForPatterns)
}

// EffectiveDeparture is the departure instant in epoch seconds, preferring
// the realtime offset when OTP provides one.
func EffectiveDeparture(st otp.StopTime) int64 {
	return DepartureTime(st, true)
}

// DepartureTime is the departure instant in epoch seconds. The realtime
// offset is used only when useRealtime is set and present.
func DepartureTime(st otp.StopTime, useRealtime bool) int64 {
	offset := st.ScheduledDeparture
	if useRealtime && st.RealtimeDeparture != nil {
		offset = *st.RealtimeDeparture
	}
	return st.ServiceDay + int64(offset)
}

func findRoute(routes []otp.Route, id string) *otp.Route {
	for i := range routes {
		if routes[i].ID == id {
			r := routes[i]
			return &r
		}
	}
	return nil
}
