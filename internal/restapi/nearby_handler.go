package restapi

import (
	"net/http"

	"otpviewer.org/internal/models"
	"otpviewer.org/internal/viewer"
)

const (
	defaultNearbyRadius = 250
	defaultStopsRadius  = 250
	maxRadius           = 10000
)

// nearbyHandler lists the stops closest to a point, merging platforms that
// share a stop code.
func (api *RestAPI) nearbyHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	lat, lon := q.latLon()
	radius := q.int("radius", defaultNearbyRadius, 1, maxRadius)
	if !q.valid() {
		api.validationErrorResponse(w, r, q.errors)
		return
	}

	nodes, err := api.OTP.Nearby(r.Context(), lat, lon, radius)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	entry := viewer.NearbyResult{Lat: lat, Lon: lon, Nodes: viewer.MergeSameStops(nodes)}
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences(), api.apiClock()))
}

// stopsByRadiusHandler lists the stops around a point. When lat and lon are
// omitted the point is the location of focusStopId.
func (api *RestAPI) stopsByRadiusHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	focusStopID := r.URL.Query().Get("focusStopId")
	radius := q.int("radius", defaultStopsRadius, 1, maxRadius)

	var lat, lon float64
	if q.has("lat") || q.has("lon") || focusStopID == "" {
		lat, lon = q.latLon()
	} else if err := validateID(focusStopID); err != nil {
		q.fail("focusStopId", err.Error())
	}
	if !q.valid() {
		api.validationErrorResponse(w, r, q.errors)
		return
	}

	if !q.has("lat") && focusStopID != "" {
		focus, err := api.OTP.Stop(r.Context(), focusStopID)
		if err != nil {
			api.otpErrorResponse(w, r, err)
			return
		}
		lat, lon = focus.Lat, focus.Lon
	}

	stops, err := api.OTP.StopsByRadius(r.Context(), lat, lon, radius)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	entry := viewer.NearbyStops(focusStopID, stops)
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences(), api.apiClock()))
}

// stopsInBoundsHandler looks up the stops of already viewed routes, either
// inside a box (minLat, minLon, maxLat, maxLon) or around a point
// (lat, lon, radius).
func (api *RestAPI) stopsInBoundsHandler(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)

	if q.has("lat") || q.has("lon") {
		lat, lon := q.latLon()
		radius := q.int("radius", defaultStopsRadius, 1, maxRadius)
		if !q.valid() {
			api.validationErrorResponse(w, r, q.errors)
			return
		}
		stops := api.Index.StopsNear(lat, lon, float64(radius))
		api.sendResponse(w, r, models.NewListResponse(stops, models.NewEmptyReferences(), false, api.apiClock()))
		return
	}

	bounds := viewer.Bounds{
		MinLat: q.float("minLat", true, -90, 90),
		MinLon: q.float("minLon", true, -180, 180),
		MaxLat: q.float("maxLat", true, -90, 90),
		MaxLon: q.float("maxLon", true, -180, 180),
	}
	if q.valid() && (bounds.MinLat > bounds.MaxLat || bounds.MinLon > bounds.MaxLon) {
		q.fail("bounds", "min must not exceed max")
	}
	if !q.valid() {
		api.validationErrorResponse(w, r, q.errors)
		return
	}

	stops := api.Index.StopsWithinBounds(bounds)
	api.sendResponse(w, r, models.NewListResponse(stops, models.NewEmptyReferences(), false, api.apiClock()))
}
