package restapi

import (
	"cmp"
	"net/http"
	"slices"

	"otpviewer.org/internal/models"
	"otpviewer.org/internal/otp"
	"otpviewer.org/internal/viewer"
)

func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := api.Index.RouteSummaries(r.Context())
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	list := make([]viewer.RouteSummary, 0, len(summaries))
	for _, s := range summaries {
		list = append(list, s)
	}
	slices.SortFunc(list, func(a, b viewer.RouteSummary) int {
		return cmp.Compare(a.ID, b.ID)
	})

	api.sendResponse(w, r, models.NewListResponse(list, models.NewEmptyReferences(), false, api.apiClock()))
}

func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	routeID, ok := api.requireID(w, r)
	if !ok {
		return
	}

	detail, err := api.Index.RouteDetail(r.Context(), routeID)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	references := models.NewEmptyReferences()
	if detail.Agency != nil {
		references.Agencies = append(references.Agencies, *detail.Agency)
	}
	api.sendResponse(w, r, models.NewEntryResponse(detail, references, api.apiClock()))
}

// stopsForRouteHandler returns the stops drawn over a route: those of one
// pattern when patternId is given, otherwise the flex zones of every pattern.
func (api *RestAPI) stopsForRouteHandler(w http.ResponseWriter, r *http.Request) {
	routeID, ok := api.requireID(w, r)
	if !ok {
		return
	}
	patternID := r.URL.Query().Get("patternId")

	detail, err := api.Index.RouteDetail(r.Context(), routeID)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}
	if patternID != "" {
		if _, found := detail.Patterns[patternID]; !found {
			api.sendNotFound(w, r)
			return
		}
	}

	stops := viewer.StopsForRoute(detail, patternID)
	api.sendResponse(w, r, models.NewListResponse(stops, models.NewEmptyReferences(), false, api.apiClock()))
}

func (api *RestAPI) tripHandler(w http.ResponseWriter, r *http.Request) {
	tripID, ok := api.requireID(w, r)
	if !ok {
		return
	}

	trip, err := api.OTP.Trip(r.Context(), tripID)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	references := models.NewEmptyReferences()
	if trip.Route != nil {
		route := *trip.Route
		route.Patterns = nil
		references.Routes = append(references.Routes, route)
		if route.Agency != nil {
			references.Agencies = append(references.Agencies, *route.Agency)
		}
	}
	references.Stops = append(references.Stops, stripStops(trip.Stops)...)

	api.sendResponse(w, r, models.NewEntryResponse(trip, references, api.apiClock()))
}

// stripStops drops nested route lists so references stay flat.
func stripStops(stops []otp.Stop) []otp.Stop {
	out := make([]otp.Stop, 0, len(stops))
	for _, s := range stops {
		s.Routes = nil
		s.StoptimesForPatterns = nil
		out = append(out, s)
	}
	return out
}
