package restapi

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache tiers in seconds.
const (
	cacheStatic   = 300
	cacheRealtime = 30
	cacheNone     = 0
)

// withAPIKey rejects requests without a configured key, then applies the
// per-key rate limit and the Cache-Control tier.
func (api *RestAPI) withAPIKey(cacheSeconds int, handler http.HandlerFunc) http.Handler {
	limited := api.rateLimiter.Handler()(CacheControlMiddleware(cacheSeconds, handler))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// SetRoutes registers every endpoint on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Application != nil && api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	mux.Handle("GET /api/where/current-time.json", api.withAPIKey(cacheRealtime, api.currentTimeHandler))
	mux.Handle("GET /api/where/config.json", api.withAPIKey(cacheStatic, api.configHandler))
	mux.Handle("GET /api/where/service-time-range.json", api.withAPIKey(cacheStatic, api.serviceTimeRangeHandler))

	mux.Handle("GET /api/where/routes.json", api.withAPIKey(cacheStatic, api.routesHandler))
	mux.Handle("GET /api/where/route/{id}", api.withAPIKey(cacheStatic, api.routeHandler))
	mux.Handle("GET /api/where/stops-for-route/{id}", api.withAPIKey(cacheStatic, api.stopsForRouteHandler))
	mux.Handle("GET /api/where/trip/{id}", api.withAPIKey(cacheStatic, api.tripHandler))

	mux.Handle("GET /api/where/stop-times-for-stop/{id}", api.withAPIKey(cacheRealtime, api.stopTimesForStopHandler))
	mux.Handle("GET /api/where/vehicles-for-route/{id}", api.withAPIKey(cacheRealtime, api.vehiclesForRouteHandler))

	mux.Handle("GET /api/where/nearby.json", api.withAPIKey(cacheRealtime, api.nearbyHandler))
	mux.Handle("GET /api/where/stops-by-radius.json", api.withAPIKey(cacheStatic, api.stopsByRadiusHandler))
	mux.Handle("GET /api/where/stops-in-bounds.json", api.withAPIKey(cacheStatic, api.stopsInBoundsHandler))

	mux.Handle("GET /api/where/favorite-stops.json", api.withAPIKey(cacheNone, api.listFavoritesHandler))
	mux.Handle("PUT /api/where/favorite-stops/{id}", api.withAPIKey(cacheNone, api.addFavoriteHandler))
	mux.Handle("DELETE /api/where/favorite-stops/{id}", api.withAPIKey(cacheNone, api.removeFavoriteHandler))
}

// Handler wraps mux with the server-wide middleware: CORS, request id,
// request logging and metrics, outermost first.
func (api *RestAPI) Handler(mux http.Handler) http.Handler {
	var h http.Handler = mux
	if api.Application != nil {
		h = MetricsHandler(api.Metrics)(h)
		h = NewRequestLoggingMiddleware(api.logger())(h)
	}
	h = RequestIDMiddleware(h)
	return corsMiddleware(api.corsOrigins())(h)
}

func (api *RestAPI) corsOrigins() []string {
	if api.Application == nil || len(api.Config.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return api.Config.CORSOrigins
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
