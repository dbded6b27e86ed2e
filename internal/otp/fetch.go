package otp

import (
	"context"
)

// Route loads a route with its patterns and their stops.
func (c *Client) Route(ctx context.Context, routeID string) (*Route, error) {
	var data struct {
		Route *Route `json:"route"`
	}
	err := c.Query(ctx, routeQuery, map[string]any{"routeId": routeID}, &data,
		QueryOptions{Operation: "route", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	if data.Route == nil {
		return nil, ErrNotFound
	}
	return data.Route, nil
}

// Routes loads every route known to OTP, without patterns.
func (c *Client) Routes(ctx context.Context) ([]Route, error) {
	var data struct {
		Routes []Route `json:"routes"`
	}
	err := c.Query(ctx, routesQuery, nil, &data, QueryOptions{Operation: "routes", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	return data.Routes, nil
}

// StopTimesForStop loads a stop with its routes and the departures of the
// service day starting at serviceDay (epoch seconds).
func (c *Client) StopTimesForStop(ctx context.Context, stopID string, serviceDay int64, numberOfDepartures int) (*Stop, error) {
	var data struct {
		Stop *Stop `json:"stop"`
	}
	vars := map[string]any{
		"stopId":             stopID,
		"serviceDay":         serviceDay,
		"numberOfDepartures": numberOfDepartures,
	}
	err := c.Query(ctx, stopTimesForStopQuery, vars, &data,
		QueryOptions{Operation: "stop_times_for_stop", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	if data.Stop == nil {
		return nil, ErrNotFound
	}
	return data.Stop, nil
}

// Stop loads the location of a stop.
func (c *Client) Stop(ctx context.Context, stopID string) (*Stop, error) {
	var data struct {
		Stop *Stop `json:"stop"`
	}
	err := c.Query(ctx, stopQuery, map[string]any{"stopId": stopID}, &data, QueryOptions{Operation: "stop"})
	if err != nil {
		return nil, err
	}
	if data.Stop == nil {
		return nil, ErrNotFound
	}
	return data.Stop, nil
}

// Trip loads a trip with its route, stops and geometry.
func (c *Client) Trip(ctx context.Context, tripID string) (*Trip, error) {
	var data struct {
		Trip *Trip `json:"trip"`
	}
	err := c.Query(ctx, tripQuery, map[string]any{"tripId": tripID}, &data,
		QueryOptions{Operation: "trip", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	if data.Trip == nil {
		return nil, ErrNotFound
	}
	return data.Trip, nil
}

// VehiclePositionsForRoute returns the patterns of a route with their vehicles.
func (c *Client) VehiclePositionsForRoute(ctx context.Context, routeID string) ([]Pattern, error) {
	var data struct {
		Route *struct {
			Patterns []Pattern `json:"patterns"`
		} `json:"route"`
	}
	err := c.Query(ctx, vehiclePositionsQuery, map[string]any{"routeId": routeID}, &data,
		QueryOptions{Operation: "vehicle_positions", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	if data.Route == nil {
		return nil, ErrNotFound
	}
	return data.Route.Patterns, nil
}

// StopsByRadius returns the stops within radius meters of a point.
func (c *Client) StopsByRadius(ctx context.Context, lat, lon float64, radius int) ([]Stop, error) {
	var data struct {
		StopsByRadius *struct {
			Edges []struct {
				Node struct {
					Stop *Stop `json:"stop"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"stopsByRadius"`
	}
	vars := map[string]any{"lat": lat, "lon": lon, "radius": radius}
	err := c.Query(ctx, stopsByRadiusQuery, vars, &data,
		QueryOptions{Operation: "stops_by_radius", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	if data.StopsByRadius == nil {
		return []Stop{}, nil
	}
	stops := make([]Stop, 0, len(data.StopsByRadius.Edges))
	for _, edge := range data.StopsByRadius.Edges {
		if edge.Node.Stop != nil {
			stops = append(stops, *edge.Node.Stop)
		}
	}
	return stops, nil
}

// Nearby returns the stops nearest to a point. This query is throttled.
func (c *Client) Nearby(ctx context.Context, lat, lon float64, radius int) ([]NearbyNode, error) {
	var data struct {
		Nearest *struct {
			Edges []struct {
				Node NearbyNode `json:"node"`
			} `json:"edges"`
		} `json:"nearest"`
	}
	vars := map[string]any{"lat": lat, "lon": lon, "radius": radius}
	if err := c.Query(ctx, nearbyQuery, vars, &data, QueryOptions{Operation: "nearby"}); err != nil {
		return nil, err
	}
	if data.Nearest == nil {
		return []NearbyNode{}, nil
	}
	nodes := make([]NearbyNode, 0, len(data.Nearest.Edges))
	for _, edge := range data.Nearest.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes, nil
}

// ServiceTimeRange returns the date range OTP can plan and schedule for.
func (c *Client) ServiceTimeRange(ctx context.Context) (*ServiceTimeRange, error) {
	var data struct {
		ServiceTimeRange *ServiceTimeRange `json:"serviceTimeRange"`
	}
	err := c.Query(ctx, serviceTimeRangeQuery, nil, &data,
		QueryOptions{Operation: "service_time_range", NoThrottle: true})
	if err != nil {
		return nil, err
	}
	if data.ServiceTimeRange == nil {
		return nil, ErrNotFound
	}
	return data.ServiceTimeRange, nil
}

// Ping runs the smallest possible query to check that OTP is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.Query(ctx, "{ __typename }", nil, nil, QueryOptions{Operation: "ping", NoThrottle: true})
}
