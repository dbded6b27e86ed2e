package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"otpviewer.org/internal/logging"
	"otpviewer.org/internal/models"
	"otpviewer.org/internal/otp"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(&w)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusNotFound, "resource not found")
}

func (api *RestAPI) sendUnauthorized(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusUnauthorized, "permission denied")
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, message string) {
	setJSONResponseType(&w)
	w.WriteHeader(code)

	response := models.ResponseModel{
		Code:        code,
		CurrentTime: models.ResponseCurrentTime(api.apiClock()),
		Text:        message,
		Version:     models.APIVersion,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.logger(), "failed to encode error response", err)
	}
}

// validationErrorResponse answers 400 with the offending fields in data.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)

	response := models.ResponseModel{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(api.apiClock()),
		Text:        "invalid request",
		Version:     models.APIVersion,
		Data:        map[string]any{"fieldErrors": fieldErrors},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.logger(), "failed to encode validation response", err)
	}
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.logger(), "internal server error", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())))
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}

// otpErrorResponse maps a failed OTP call onto a response: missing entities
// are 404, everything else is a bad gateway.
func (api *RestAPI) otpErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, otp.ErrNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.LogError(api.logger(), "otp request failed", err,
		slog.String("path", r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())))
	api.sendError(w, r, http.StatusBadGateway, "trip planner unavailable")
}
