package restapi

import (
	"net/http"

	"otpviewer.org/internal/models"
)

// currentTimeHandler writes the server time. A pinned clock makes this the
// time the viewers treat as "now".
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	timeData := models.NewCurrentTimeData(api.apiClock().Now())
	api.sendResponse(w, r, models.NewEntryResponse(timeData, models.NewEmptyReferences(), api.apiClock()))
}
