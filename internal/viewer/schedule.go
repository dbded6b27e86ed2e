package viewer

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"otpviewer.org/internal/otp"
)

// Realtime statuses of a departure.
const (
	StatusScheduled = "SCHEDULED"
	StatusOnTime    = "ON_TIME"
	StatusEarly     = "EARLY"
	StatusLate      = "LATE"
)

// DefaultOnTimeThreshold is the delay under which a departure is on time.
const DefaultOnTimeThreshold = 60 * time.Second

// IsLastStop reports whether the first visit of stopID is the final stop of
// the pattern. A loop that starts and ends at the stop still departs from it.
// A pattern without stops counts as ending everywhere.
func IsLastStop(stopID string, pattern otp.Pattern) bool {
	i := slices.IndexFunc(pattern.Stops, func(s otp.Stop) bool { return s.ID == stopID })
	return i == len(pattern.Stops)-1
}

// RouteIsValid reports whether a pattern's route was found among the stop's
// routes. A missing route is logged since OTP should never produce one.
func RouteIsValid(logger *slog.Logger, route *otp.Route, routeID string) bool {
	if route != nil {
		return true
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("route not found for pattern", slog.String("route_id", routeID))
	return false
}

// FilterPatternsForStop drops the patterns that end at the stop, since
// nothing departs from there, and the patterns whose route the stop does not
// list.
func FilterPatternsForStop(logger *slog.Logger, stop *otp.Stop, resolve RouteIDResolver) []otp.StoptimesInPattern {
	if stop == nil {
		return []otp.StoptimesInPattern{}
	}
	if resolve == nil {
		resolve = RouteIDForPattern
	}
	out := make([]otp.StoptimesInPattern, 0, len(stop.StoptimesForPatterns))
	for _, entry := range stop.StoptimesForPatterns {
		if IsLastStop(stop.ID, entry.Pattern) {
			continue
		}
		routeID := resolve(entry.Pattern)
		if !RouteIsValid(logger, findRoute(stop.Routes, routeID), routeID) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// ServiceDayStart returns midnight of date (YYYY-MM-DD) in loc, in epoch seconds.
func ServiceDayStart(date string, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return 0, fmt.Errorf("invalid service date %q: %w", date, err)
	}
	return day.Unix(), nil
}

// FirstDepartureFromNow returns the index of the first stop time departing
// at or after now, or -1.
func FirstDepartureFromNow(times []DetailedStopTime, now time.Time) int {
	cutoff := now.Unix()
	for i, st := range times {
		if EffectiveDeparture(st.StopTime) >= cutoff {
			return i
		}
	}
	return -1
}

// RealtimeStatus classifies a departure against the on-time threshold.
func RealtimeStatus(st otp.StopTime, threshold time.Duration) string {
	if !st.Realtime {
		return StatusScheduled
	}
	if threshold <= 0 {
		threshold = DefaultOnTimeThreshold
	}
	delay := time.Duration(st.DepartureDelay) * time.Second
	switch {
	case delay >= threshold:
		return StatusLate
	case delay <= -threshold:
		return StatusEarly
	default:
		return StatusOnTime
	}
}

// ScheduleOptions control BuildStopSchedule.
type ScheduleOptions struct {
	Date            string
	Now             time.Time
	IsToday         bool
	OnTimeThreshold time.Duration
	ShowBlockIDs    bool
	Logger          *slog.Logger
	Reconciler      *Reconciler
	// Patterns, when non-nil, are the already filtered patterns of the stop.
	Patterns []otp.StoptimesInPattern
}

// ScheduledDeparture is a merged stop time with its realtime status.
type ScheduledDeparture struct {
	DetailedStopTime
	Status string `json:"status"`
}

// StopSchedule is the stop viewer's schedule for one service day.
type StopSchedule struct {
	StopID        string               `json:"stopId"`
	StopName      string               `json:"stopName,omitempty"`
	StopCode      string               `json:"stopCode,omitempty"`
	Date          string               `json:"date"`
	Departures    []ScheduledDeparture `json:"departures"`
	NextDeparture int                  `json:"nextDeparture"`
}

// BuildStopSchedule filters, merges and sorts the departures of a stop.
func BuildStopSchedule(stop *otp.Stop, opts ScheduleOptions) StopSchedule {
	schedule := StopSchedule{Date: opts.Date, Departures: []ScheduledDeparture{}, NextDeparture: -1}
	if stop == nil {
		return schedule
	}
	schedule.StopID = stop.ID
	schedule.StopName = stop.Name
	schedule.StopCode = stop.Code

	reconciler := opts.Reconciler
	if reconciler == nil {
		reconciler = NewReconciler()
	}
	patterns := opts.Patterns
	if patterns == nil {
		patterns = FilterPatternsForStop(opts.Logger, stop, reconciler.RouteID)
	}
	merged := reconciler.MergeAndSort(stop.Routes, patterns)

	for _, st := range merged {
		if !opts.ShowBlockIDs {
			st.BlockID = ""
		}
		schedule.Departures = append(schedule.Departures, ScheduledDeparture{
			DetailedStopTime: st,
			Status:           RealtimeStatus(st.StopTime, opts.OnTimeThreshold),
		})
	}
	if opts.IsToday {
		schedule.NextDeparture = FirstDepartureFromNow(merged, opts.Now)
	}
	return schedule
}
