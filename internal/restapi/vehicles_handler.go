package restapi

import (
	"net/http"

	"otpviewer.org/internal/models"
)

// vehiclesForRouteHandler serves the live vehicles of a route. Asking for a
// route keeps it on the poller's watch list.
func (api *RestAPI) vehiclesForRouteHandler(w http.ResponseWriter, r *http.Request) {
	routeID, ok := api.requireID(w, r)
	if !ok {
		return
	}

	batch, err := api.Poller.Vehicles(r.Context(), routeID)
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(batch.Vehicles, models.NewEmptyReferences(), false, api.apiClock()))
}
