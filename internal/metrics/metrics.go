// Package metrics exposes the Prometheus metrics of the viewer gateway.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "otpviewer"

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream OTP GraphQL round trips, by operation and outcome
	OTPRequestsTotal   *prometheus.CounterVec
	OTPRequestDuration *prometheus.HistogramVec

	CacheLookupsTotal *prometheus.CounterVec

	VehiclePollsTotal *prometheus.CounterVec
	VehiclesPublished prometheus.Counter
	WatchedRoutes     prometheus.Gauge

	// Favorites store connection pool
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	logger *slog.Logger

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics on a fresh registry. logger receives
// collector failures.
func NewWithLogger(logger *slog.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		OTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_requests_total",
			Help:      "GraphQL requests sent to OpenTripPlanner",
		}, []string{"operation", "outcome"}),
		OTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "otp_request_duration_seconds",
			Help:      "OpenTripPlanner GraphQL latency distribution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Transit index lookups by cache and result",
		}, []string{"cache", "result"}),
		VehiclePollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicle_polls_total",
			Help:      "Vehicle position refreshes by outcome",
		}, []string{"outcome"}),
		VehiclesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicles_published_total",
			Help:      "Vehicle position batches handed to the publisher",
		}),
		WatchedRoutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watched_routes",
			Help:      "Routes whose vehicle positions are being refreshed",
		}),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of database connections currently in use",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		}),
		DBWaitSecondsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_wait_seconds_total",
			Help:      "Total time blocked waiting for a database connection",
		}),
		logger: logger,
	}

	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OTPRequestsTotal,
		m.OTPRequestDuration,
		m.CacheLookupsTotal,
		m.VehiclePollsTotal,
		m.VehiclesPublished,
		m.WatchedRoutes,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.DBWaitSecondsTotal,
	)
	return m
}

// ObserveOTPRequest records one GraphQL round trip.
func (m *Metrics) ObserveOTPRequest(operation, outcome string, duration time.Duration) {
	m.OTPRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.OTPRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveCacheLookup records a transit index lookup.
func (m *Metrics) ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// ObserveVehiclePoll records one refresh of a watched route.
func (m *Metrics) ObserveVehiclePoll(err error, published bool) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.VehiclePollsTotal.WithLabelValues(outcome).Inc()
	if published {
		m.VehiclesPublished.Inc()
	}
}

// SetWatchedRoutes reports how many routes the poller watches.
func (m *Metrics) SetWatchedRoutes(n int) {
	m.WatchedRoutes.Set(float64(n))
}

// StartDBStatsCollector periodically copies the pool statistics of db into
// the DB gauges. Only the first call starts a collector; Shutdown stops it.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastWait time.Duration
		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
				m.DBConnectionsIdle.Set(float64(stats.Idle))
				if delta := stats.WaitDuration - lastWait; delta > 0 {
					m.DBWaitSecondsTotal.Add(delta.Seconds())
				}
				lastWait = stats.WaitDuration
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector and waits for it to exit.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
