package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"otpviewer.org/internal/models"
	"otpviewer.org/internal/viewer"
)

// stopTimesEntry is a stop schedule together with its departures grouped
// by route and headsign.
type stopTimesEntry struct {
	viewer.StopSchedule
	Groups []viewer.StopTimesGroup `json:"groups"`
}

// stopTimesForStopHandler serves the stop viewer. The date parameter
// (YYYY-MM-DD, home timezone) defaults to today.
func (api *RestAPI) stopTimesForStopHandler(w http.ResponseWriter, r *http.Request) {
	stopID, ok := api.requireID(w, r)
	if !ok {
		return
	}

	loc := api.ViewerConfig.Location()
	now := api.apiClock().Now().In(loc)
	today := now.Format(time.DateOnly)

	date := r.URL.Query().Get("date")
	if date == "" {
		date = today
	}
	serviceDay, err := viewer.ServiceDayStart(date, loc)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"date": {"must be formatted as YYYY-MM-DD"}})
		return
	}

	stop, err := api.OTP.StopTimesForStop(r.Context(), stopID, serviceDay, api.ViewerConfig.StopViewer.NumberOfDepartures)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	logger := api.logger().With(slog.String("stop_id", stopID))
	reconciler := viewer.NewReconciler()
	patterns := viewer.FilterPatternsForStop(logger, stop, reconciler.RouteID)
	schedule := viewer.BuildStopSchedule(stop, viewer.ScheduleOptions{
		Date:            date,
		Now:             now,
		IsToday:         date == today,
		OnTimeThreshold: api.ViewerConfig.OnTimeThreshold(),
		ShowBlockIDs:    api.ViewerConfig.StopViewer.ShowBlockIds,
		Logger:          logger,
		Reconciler:      reconciler,
		Patterns:        patterns,
	})
	groups := reconciler.Group(stop.Routes, patterns)

	references := models.NewEmptyReferences()
	for _, route := range stop.Routes {
		route.Patterns = nil
		references.Routes = append(references.Routes, route)
	}

	entry := stopTimesEntry{StopSchedule: schedule, Groups: groups}
	api.sendResponse(w, r, models.NewEntryResponse(entry, references, api.apiClock()))
}
