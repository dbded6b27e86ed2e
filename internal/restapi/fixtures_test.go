package restapi

// Canned OTP answers. The service day of testNow starts at 1714546800
// (2024-05-01 00:00 America/Los_Angeles).
const testServiceDay = 1714546800

var defaultOTPResponses = map[string]string{
	"Route": `{"route": {
		"id": "1:100",
		"agency": {"id": "1", "name": "Metro"},
		"shortName": "100",
		"longName": "Crosstown",
		"mode": "BUS",
		"type": 3,
		"color": "FF0000",
		"patterns": [
			{"id": "1:100:0:01", "headsign": "Downtown", "name": "100 to Downtown",
			 "patternGeometry": {"points": "_p~iF~ps|U_ulLnnqC", "length": 3},
			 "stops": [
				{"id": "1:1", "code": "11", "name": "First St", "lat": 38.50, "lon": -120.20, "routes": [{"color": "FF0000"}]},
				{"id": "1:2", "code": "12", "name": "Second St", "lat": 38.55, "lon": -120.25, "routes": [{"color": "FF0000"}]},
				{"id": "1:3", "code": "13", "name": "Third St", "lat": 38.60, "lon": -120.30, "routes": [{"color": "FF0000"}],
				 "geometries": {"geoJson": {"type": "Polygon", "coordinates": [[[-120.31, 38.59], [-120.29, 38.59], [-120.29, 38.61], [-120.31, 38.59]]]}}}
			 ]},
			{"id": "1:100:1:01", "headsign": "Downtown", "name": "100 to Downtown (short)",
			 "stops": [
				{"id": "1:2", "code": "12", "name": "Second St", "lat": 38.55, "lon": -120.25},
				{"id": "1:3", "code": "13", "name": "Third St", "lat": 38.60, "lon": -120.30}
			 ]},
			{"id": "1:100:1:02", "headsign": "Airport", "name": "100 to Airport",
			 "stops": [
				{"id": "1:3", "code": "13", "name": "Third St", "lat": 38.60, "lon": -120.30},
				{"id": "1:2", "code": "12", "name": "Second St", "lat": 38.55, "lon": -120.25},
				{"id": "1:1", "code": "11", "name": "First St", "lat": 38.50, "lon": -120.20}
			 ]}
		]
	}}`,

	"routes": `{"routes": [
		{"id": "1:200", "agency": {"id": "1", "name": "Metro"}, "shortName": "200", "mode": "TRAM", "type": 0, "color": "00FF00"},
		{"id": "1:100", "agency": {"id": "1", "name": "Metro"}, "shortName": "100", "mode": "BUS", "type": 3, "color": "FF0000"}
	]}`,

	"StopTimes": `{"stop": {
		"id": "1:1",
		"code": "11",
		"name": "First St",
		"lat": 38.50,
		"lon": -120.20,
		"routes": [{"id": "1:100", "agency": {"id": "1", "name": "Metro"}, "shortName": "100", "mode": "BUS"}],
		"stoptimesForPatterns": [
			{"pattern": {"id": "1:100:0:01", "headsign": "Downtown", "name": "100 to Downtown",
			             "route": {"id": "1:100"}, "stops": [{"id": "1:1"}, {"id": "1:2"}, {"id": "1:3"}]},
			 "stoptimes": [
				{"headsign": "", "scheduledDeparture": 39600, "serviceDay": 1714546800,
				 "trip": {"id": "1:t1", "blockId": "b1", "route": {"id": "1:100"}}},
				{"headsign": "Downtown", "scheduledDeparture": 32400, "realtimeDeparture": 32520,
				 "departureDelay": 120, "realtime": true, "serviceDay": 1714546800,
				 "trip": {"id": "1:t2", "blockId": "b2", "route": {"id": "1:100"}}}
			 ]},
			{"pattern": {"id": "1:100:1:02", "headsign": "Airport", "name": "100 to Airport",
			             "route": {"id": "1:100"}, "stops": [{"id": "1:3"}, {"id": "1:2"}, {"id": "1:1"}]},
			 "stoptimes": [{"headsign": "Airport", "scheduledDeparture": 36000, "serviceDay": 1714546800}]},
			{"pattern": {"id": "2:999:0", "headsign": "Nowhere", "name": "999 to Nowhere",
			             "route": {"id": "2:999"}, "stops": [{"id": "1:1"}, {"id": "9:9"}]},
			 "stoptimes": [{"headsign": "Nowhere", "scheduledDeparture": 37000, "serviceDay": 1714546800}]}
		]
	}}`,

	"Stop": `{"stop": {"id": "1:1", "name": "First St", "lat": 38.50, "lon": -120.20}}`,

	"Trip": `{"trip": {
		"id": "1:t1",
		"tripHeadsign": "Downtown",
		"route": {"id": "1:100", "agency": {"id": "1", "name": "Metro"}, "shortName": "100"},
		"stops": [{"id": "1:1", "name": "First St", "lat": 38.50, "lon": -120.20}],
		"tripGeometry": {"points": "_p~iF~ps|U_ulLnnqC", "length": 3}
	}}`,

	"VehiclePositions": `{"route": {"patterns": [
		{"id": "1:100:0:01", "vehiclePositions": [
			{"vehicleId": "1:v1", "label": "4101", "lat": 38.52, "lon": -120.22, "speed": 7.5, "heading": 90,
			 "lastUpdated": 1714582790,
			 "stopRelationship": {"status": "IN_TRANSIT_TO", "stop": {"id": "1:2", "name": "Second St"}},
			 "trip": {"pattern": {"id": "1:100:0:01"}}},
			{"vehicleId": "1:v2", "label": "4102", "lat": 38.58, "lon": -120.28, "lastUpdated": 1714580000}
		]},
		{"id": "1:100:1:02", "vehiclePositions": [null]}
	]}}`,

	"StopsByRadius": `{"stopsByRadius": {"edges": [
		{"node": {"stop": {"id": "1:1", "name": "First St", "lat": 38.50, "lon": -120.20,
		                   "routes": [{"id": "1:100", "agency": {"id": "1", "name": "Metro"}}]}}},
		{"node": {"stop": {"id": "2:5", "name": "Depot", "lat": 38.501, "lon": -120.201}}}
	]}}`,

	"Nearby": `{"nearest": {"edges": [
		{"node": {"id": "n1", "distance": 10, "place": {"__typename": "Stop", "id": "s1", "gtfsId": "1:1", "code": "11", "name": "First St", "lat": 38.50, "lon": -120.20,
		          "stoptimesForPatterns": [{"pattern": {"id": "1:100:0:01"}, "stoptimes": []}]}}},
		{"node": {"id": "n2", "distance": 15, "place": {"__typename": "Stop", "id": "s2", "gtfsId": "1:1b", "code": "11", "name": "First St (B)", "lat": 38.5001, "lon": -120.2001,
		          "stoptimesForPatterns": [{"pattern": {"id": "1:200:0:01"}, "stoptimes": []}]}}},
		{"node": {"id": "n3", "distance": 90, "place": {"__typename": "Stop", "id": "s3", "gtfsId": "1:2", "code": "12", "name": "Second St", "lat": 38.501, "lon": -120.201}}}
	]}}`,

	"serviceTimeRange": `{"serviceTimeRange": {"start": 1714546800, "end": 1717225200}}`,
}
