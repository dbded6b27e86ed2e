package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehiclesForRouteHandler(t *testing.T) {
	env := createTestEnv(t)
	resp, model := serveApiAndRetrieveEndpoint(t, env.api, "/api/where/vehicles-for-route/1:100.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	// 1:v2 last reported 46 minutes ago and is flagged as stale.
	assert.Equal(t, []string{"1:v1", "1:v2"}, idsOf(t, list, "vehicleId"))
	assert.Equal(t, false, list[0].(map[string]any)["stale"])
	assert.Equal(t, true, list[1].(map[string]any)["stale"])

	v := list[0].(map[string]any)
	assert.Equal(t, "1:2", v["nextStopId"])
	assert.Equal(t, "IN_TRANSIT_TO", v["stopStatus"])
	assert.Equal(t, "1:100:0:01", v["patternId"])
	assert.Equal(t, 7.5, v["speed"])

	assert.Equal(t, []string{"1:100"}, env.api.Poller.WatchedRoutes())
}

func TestVehiclesForRouteHandlerServesCachedBatch(t *testing.T) {
	env := createTestEnv(t)
	for range 2 {
		resp, _ := serveApiAndRetrieveEndpoint(t, env.api, "/api/where/vehicles-for-route/1:100?key=TEST")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Len(t, env.otp.requestsFor("VehiclePositions"), 1)
}

func TestVehiclesForRouteHandlerNotFound(t *testing.T) {
	env := createTestEnv(t)
	env.otp.set("VehiclePositions", `{"route": null}`)

	resp, _ := serveApiAndRetrieveEndpoint(t, env.api, "/api/where/vehicles-for-route/1:404?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
