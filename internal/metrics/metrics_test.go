package metrics

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/where/routes", "200").Inc()
	m.ObserveOTPRequest("route", "ok", 10*time.Millisecond)
	m.ObserveCacheLookup("route", true)
	m.ObserveVehiclePoll(nil, false)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"otpviewer_http_requests_total",
		"otpviewer_otp_requests_total",
		"otpviewer_otp_request_duration_seconds",
		"otpviewer_cache_lookups_total",
		"otpviewer_vehicle_polls_total",
		"otpviewer_watched_routes",
		"otpviewer_db_connections_open",
	} {
		assert.True(t, names[want], want)
	}
}

func TestObserveOTPRequest(t *testing.T) {
	m := New()
	m.ObserveOTPRequest("route", "ok", time.Second)
	m.ObserveOTPRequest("route", "ok", time.Second)
	m.ObserveOTPRequest("nearby", "graphql_error", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OTPRequestsTotal.WithLabelValues("route", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OTPRequestsTotal.WithLabelValues("nearby", "graphql_error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OTPRequestDuration))
}

func TestObserveCacheLookup(t *testing.T) {
	m := New()
	m.ObserveCacheLookup("route", true)
	m.ObserveCacheLookup("route", false)
	m.ObserveCacheLookup("route", false)

	expected := `
# HELP otpviewer_cache_lookups_total Transit index lookups by cache and result
# TYPE otpviewer_cache_lookups_total counter
otpviewer_cache_lookups_total{cache="route",result="hit"} 1
otpviewer_cache_lookups_total{cache="route",result="miss"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(m.CacheLookupsTotal, strings.NewReader(expected)))
}

func TestVehiclePollMetrics(t *testing.T) {
	m := New()
	m.ObserveVehiclePoll(nil, true)
	m.ObserveVehiclePoll(errors.New("boom"), false)
	m.SetWatchedRoutes(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.VehiclePollsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VehiclePollsTotal.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VehiclesPublished))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.WatchedRoutes))
}

func TestStartDBStatsCollector_NilDB(t *testing.T) {
	m := New()
	m.StartDBStatsCollector(nil, time.Second)
	assert.False(t, m.collectorStarted.Load())
}

func TestStartDBStatsCollector_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	m := New()
	m.StartDBStatsCollector(db, 100*time.Millisecond)
	assert.True(t, m.collectorStarted.Load())

	m.StartDBStatsCollector(db, 100*time.Millisecond)
	assert.True(t, m.collectorStarted.Load())

	m.Shutdown()
}

func TestStartDBStatsCollector_CollectsStats(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, db.Ping())

	m := New()
	m.StartDBStatsCollector(db, 20*time.Millisecond)
	defer m.Shutdown()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.DBConnectionsOpen) >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestShutdown(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	m := New()
	m.StartDBStatsCollector(db, 50*time.Millisecond)

	done := make(chan struct{})
	go func() {
		m.Shutdown()
		m.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not complete within timeout")
	}
}

func TestShutdown_WithoutCollector(t *testing.T) {
	New().Shutdown()
}
