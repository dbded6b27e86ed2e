// Package restapi serves the JSON API consumed by the route and stop viewers.
package restapi

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"otpviewer.org/internal/app"
	"otpviewer.org/internal/clock"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
	validate    *validator.Validate
}

func NewRestAPI(app *app.Application) *RestAPI {
	var c clock.Clock = clock.RealClock{}
	rate := 100
	var exempt []string
	if app != nil {
		if app.Clock != nil {
			c = app.Clock
		}
		rate = app.Config.RateLimit
		exempt = app.Config.ExemptApiKeys
	}
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(rate, time.Second, exempt, c),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Shutdown stops background work owned by the API.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

func (api *RestAPI) logger() *slog.Logger {
	if api.Application == nil || api.Logger == nil {
		return slog.Default()
	}
	return api.Logger.With(slog.String("component", "rest_api"))
}

func (api *RestAPI) apiClock() clock.Clock {
	if api.Application == nil || api.Clock == nil {
		return clock.RealClock{}
	}
	return api.Clock
}
