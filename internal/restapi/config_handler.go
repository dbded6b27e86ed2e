package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"otpviewer.org/internal/logging"
	"otpviewer.org/internal/models"
)

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	configEntry := models.ConfigModel{
		ID:              "otp-viewer",
		Name:            "OTP Viewer",
		BuildProperties: models.CurrentBuildProperties(),
		HomeTimezone:    api.ViewerConfig.HomeTimezone,
	}

	// The service range is informative; the config is still served without it.
	if rng, err := api.OTP.ServiceTimeRange(r.Context()); err != nil {
		logging.LogError(api.logger(), "failed to load service time range", err,
			slog.String("request_id", GetRequestID(r.Context())))
	} else {
		loc := api.ViewerConfig.Location()
		configEntry.ServiceDateFrom = time.Unix(rng.Start, 0).In(loc).Format(time.DateOnly)
		configEntry.ServiceDateTo = time.Unix(rng.End, 0).In(loc).Format(time.DateOnly)
	}

	api.sendResponse(w, r, models.NewEntryResponse(configEntry, models.NewEmptyReferences(), api.apiClock()))
}

func (api *RestAPI) serviceTimeRangeHandler(w http.ResponseWriter, r *http.Request) {
	rng, err := api.OTP.ServiceTimeRange(r.Context())
	if err != nil {
		api.otpErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(rng, models.NewEmptyReferences(), api.apiClock()))
}
