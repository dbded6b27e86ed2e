package otp

import "encoding/json"

// Records decoded from the OTP GraphQL schema. Field aliases in queries.go
// normalize every entity id to "id".

// Agency is the operator of a route.
type Agency struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Lang     string `json:"lang,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Geometry is an encoded polyline with its point count.
type Geometry struct {
	Length int    `json:"length"`
	Points string `json:"points"`
}

// StopGeometries carries the GeoJSON footprint of a stop. Flex zones are polygons.
type StopGeometries struct {
	GeoJSON json.RawMessage `json:"geoJson,omitempty"`
}

// GeoJSONType returns the "type" member of the stop footprint, if any.
func (g *StopGeometries) GeoJSONType() string {
	if g == nil || len(g.GeoJSON) == 0 {
		return ""
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(g.GeoJSON, &head); err != nil {
		return ""
	}
	return head.Type
}

// Route is an OTP route; Patterns is only filled by the route query.
type Route struct {
	ID           string    `json:"id"`
	Agency       *Agency   `json:"agency,omitempty"`
	ShortName    string    `json:"shortName,omitempty"`
	LongName     string    `json:"longName,omitempty"`
	Desc         string    `json:"desc,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Type         int       `json:"type,omitempty"`
	Color        string    `json:"color,omitempty"`
	TextColor    string    `json:"textColor,omitempty"`
	URL          string    `json:"url,omitempty"`
	BikesAllowed string    `json:"bikesAllowed,omitempty"`
	Patterns     []Pattern `json:"patterns,omitempty"`
}

// PatternRoute is the reference a pattern holds to its route.
type PatternRoute struct {
	ID     string  `json:"id"`
	Agency *Agency `json:"agency,omitempty"`
}

// Pattern is one ordered stop sequence of a route.
type Pattern struct {
	ID               string             `json:"id"`
	Headsign         string             `json:"headsign,omitempty"`
	Name             string             `json:"name,omitempty"`
	Route            *PatternRoute      `json:"route,omitempty"`
	Stops            []Stop             `json:"stops,omitempty"`
	PatternGeometry  *Geometry          `json:"patternGeometry,omitempty"`
	VehiclePositions []*VehiclePosition `json:"vehiclePositions,omitempty"`
}

// StopIDs returns the ordered stop ids of the pattern.
func (p Pattern) StopIDs() []string {
	ids := make([]string, len(p.Stops))
	for i, s := range p.Stops {
		ids[i] = s.ID
	}
	return ids
}

// Stop is a stop or station. Routes and StoptimesForPatterns are only
// filled by the stop times query.
type Stop struct {
	ID                   string               `json:"id"`
	Code                 string               `json:"code,omitempty"`
	Name                 string               `json:"name,omitempty"`
	Lat                  float64              `json:"lat"`
	Lon                  float64              `json:"lon"`
	LocationType         string               `json:"locationType,omitempty"`
	ZoneID               string               `json:"zoneId,omitempty"`
	WheelchairBoarding   string               `json:"wheelchairBoarding,omitempty"`
	Geometries           *StopGeometries      `json:"geometries,omitempty"`
	Routes               []Route              `json:"routes,omitempty"`
	StoptimesForPatterns []StoptimesInPattern `json:"stoptimesForPatterns,omitempty"`
}

// StoptimesInPattern pairs a pattern with its departures at one stop.
type StoptimesInPattern struct {
	Pattern   Pattern    `json:"pattern"`
	Stoptimes []StopTime `json:"stoptimes"`
}

// TripPatternRef is the pattern a trip runs on.
type TripPatternRef struct {
	ID string `json:"id"`
}

// TripRouteRef is the route a stop time's trip belongs to.
type TripRouteRef struct {
	ID        string `json:"id,omitempty"`
	ShortName string `json:"shortName,omitempty"`
}

// TripRef is the trip of a stop time.
type TripRef struct {
	ID      string          `json:"id"`
	BlockID string          `json:"blockId,omitempty"`
	Pattern *TripPatternRef `json:"pattern,omitempty"`
	Route   *TripRouteRef   `json:"route,omitempty"`
}

// StopRef identifies the stop of a stop time.
type StopRef struct {
	ID string `json:"id"`
}

// StopTime is one departure event at a stop. Offsets are seconds since the
// start of the service day; ServiceDay is an epoch timestamp in seconds.
type StopTime struct {
	ArrivalDelay       int      `json:"arrivalDelay"`
	DepartureDelay     int      `json:"departureDelay"`
	Headsign           string   `json:"headsign"`
	Realtime           bool     `json:"realtime"`
	RealtimeArrival    *int     `json:"realtimeArrival,omitempty"`
	RealtimeDeparture  *int     `json:"realtimeDeparture,omitempty"`
	RealtimeState      string   `json:"realtimeState,omitempty"`
	ScheduledArrival   int      `json:"scheduledArrival"`
	ScheduledDeparture int      `json:"scheduledDeparture"`
	ServiceDay         int64    `json:"serviceDay"`
	Stop               *StopRef `json:"stop,omitempty"`
	Timepoint          bool     `json:"timepoint"`
	Trip               *TripRef `json:"trip,omitempty"`
}

// Trip is a single scheduled run with its stops and geometry.
type Trip struct {
	ID           string    `json:"id"`
	Route        *Route    `json:"route,omitempty"`
	ServiceID    string    `json:"serviceId,omitempty"`
	TripHeadsign string    `json:"tripHeadsign,omitempty"`
	DirectionID  string    `json:"directionId,omitempty"`
	BlockID      string    `json:"blockId,omitempty"`
	ShapeID      string    `json:"shapeId,omitempty"`
	Stops        []Stop    `json:"stops,omitempty"`
	TripGeometry *Geometry `json:"tripGeometry,omitempty"`
}

// StopSummary names a stop without its details.
type StopSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StopRelationship places a vehicle relative to its next stop.
type StopRelationship struct {
	Status string       `json:"status"`
	Stop   *StopSummary `json:"stop,omitempty"`
}

// VehicleTrip is the trip a vehicle is serving.
type VehicleTrip struct {
	Pattern *TripPatternRef `json:"pattern,omitempty"`
}

// VehiclePosition is a realtime vehicle. LastUpdated is in epoch seconds.
type VehiclePosition struct {
	VehicleID        string            `json:"vehicleId"`
	Label            string            `json:"label,omitempty"`
	Lat              *float64          `json:"lat,omitempty"`
	Lon              *float64          `json:"lon,omitempty"`
	StopRelationship *StopRelationship `json:"stopRelationship,omitempty"`
	Speed            *float64          `json:"speed,omitempty"`
	Heading          *float64          `json:"heading,omitempty"`
	LastUpdated      int64             `json:"lastUpdated"`
	Trip             *VehicleTrip      `json:"trip,omitempty"`
}

// NearbyPlace is the place of a nearest query edge. Only stops are requested.
type NearbyPlace struct {
	Typename             string               `json:"__typename"`
	ID                   string               `json:"id"`
	GtfsID               string               `json:"gtfsId,omitempty"`
	Name                 string               `json:"name,omitempty"`
	Code                 string               `json:"code,omitempty"`
	Lat                  float64              `json:"lat"`
	Lon                  float64              `json:"lon"`
	StoptimesForPatterns []StoptimesInPattern `json:"stoptimesForPatterns,omitempty"`
}

// NearbyNode is one result of the nearest query; Distance is in meters.
type NearbyNode struct {
	ID       string      `json:"id"`
	Distance int         `json:"distance"`
	Place    NearbyPlace `json:"place"`
}

// ServiceTimeRange bounds the service covered by the loaded feeds, in epoch seconds.
type ServiceTimeRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}
