package restapi

import (
	"encoding/json"
	"net/http"

	"otpviewer.org/internal/logging"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeHealth(w http.ResponseWriter, code int, resp HealthResponse) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// healthHandler reports whether OTP and the favorites store are reachable.
// It returns 503 Service Unavailable when either check fails.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if api.Application == nil || api.OTP == nil {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "trip planner client not initialized",
		})
		return
	}

	if err := api.OTP.Ping(r.Context()); err != nil {
		logging.LogError(api.logger(), "OTP ping failed", err)
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "trip planner unreachable",
		})
		return
	}

	if api.Store != nil {
		if err := api.Store.Ping(r.Context()); err != nil {
			logging.LogError(api.logger(), "favorites store ping failed", err)
			writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Detail: "database connection failed",
			})
			return
		}
	}

	writeHealth(w, http.StatusOK, HealthResponse{Status: "ok"})
}
