package otp

const agencyFields = `
  id: gtfsId
  name
  url
  timezone
  lang
  phone
`

const routeQuery = `query Route($routeId: String!) {
  route(id: $routeId) {
    id: gtfsId
    desc
    agency {` + agencyFields + `}
    longName
    shortName
    mode
    type
    color
    textColor
    bikesAllowed
    url
    patterns {
      id
      headsign
      name
      patternGeometry {
        points
        length
      }
      stops {
        code
        id: gtfsId
        lat
        lon
        name
        locationType
        geometries {
          geoJson
        }
        routes {
          textColor
          color
        }
      }
    }
  }
}`

const routesQuery = `{
  routes {
    id: gtfsId
    agency {
      id: gtfsId
      name
    }
    longName
    shortName
    mode
    type
    color
  }
}`

const stopTimesForStopQuery = `query StopTimes(
  $serviceDay: Long!
  $stopId: String!
  $numberOfDepartures: Int!
) {
  stop(id: $stopId) {
    id: gtfsId
    code
    lat
    lon
    locationType
    name
    wheelchairBoarding
    routes {
      id: gtfsId
      agency {
        id: gtfsId
        name
      }
      longName
      mode
      color
      textColor
      shortName
      patterns {
        id
        headsign
      }
    }
    stoptimesForPatterns(numberOfDepartures: $numberOfDepartures, startTime: $serviceDay, omitNonPickups: true, omitCanceled: false) {
      pattern {
        name
        headsign
        id: code
        route {
          id: gtfsId
          agency {
            id: gtfsId
          }
        }
        stops {
          id: gtfsId
        }
      }
      stoptimes {
        headsign
        scheduledArrival
        scheduledDeparture
        realtimeArrival
        realtimeDeparture
        arrivalDelay
        departureDelay
        realtime
        realtimeState
        timepoint
        serviceDay
        trip {
          blockId
          id
          pattern {
            id
          }
          route {
            id: gtfsId
          }
        }
      }
    }
  }
}`

const stopQuery = `query Stop($stopId: String!) {
  stop(id: $stopId) {
    id: gtfsId
    code
    lat
    lon
  }
}`

const tripQuery = `query Trip($tripId: String!) {
  trip(id: $tripId) {
    id: gtfsId
    route {
      id: gtfsId
      agency {` + agencyFields + `}
      shortName
      longName
      type
      mode
      url
      color
      textColor
    }
    serviceId
    tripHeadsign
    directionId
    blockId
    shapeId
    stops {
      id: gtfsId
      code
      name
      lat
      lon
    }
    tripGeometry {
      length
      points
    }
  }
}`

const vehiclePositionsQuery = `query VehiclePositions($routeId: String!) {
  route(id: $routeId) {
    patterns {
      vehiclePositions {
        vehicleId
        label
        lat
        lon
        stopRelationship {
          status
          stop {
            name
            id: gtfsId
          }
        }
        speed
        heading
        lastUpdated
        trip {
          pattern {
            id
          }
        }
      }
    }
  }
}`

const departureFields = `
stoptimesForPatterns(numberOfDepartures: 3) {
  pattern {
    name
    headsign
    id: code
  }
  stoptimes {
    arrivalDelay
    departureDelay
    headsign
    realtime
    realtimeArrival
    realtimeDeparture
    realtimeState
    scheduledArrival
    scheduledDeparture
    serviceDay
    stop {
      id: gtfsId
    }
    timepoint
    trip {
      id
    }
  }
}
`

const stopsByRadiusQuery = `query StopsByRadius($lat: Float!, $lon: Float!, $radius: Int!) {
  stopsByRadius(lat: $lat, lon: $lon, radius: $radius) {
    edges {
      node {
        stop {
          id: gtfsId
          code
          lat
          lon
          locationType
          name
          zoneId
          geometries {
            geoJson
          }
          routes {
            id: gtfsId
            agency {
              id: gtfsId
              name
            }
            longName
            mode
            color
            textColor
          }
          ` + departureFields + `
        }
      }
    }
  }
}`

const nearbyQuery = `query Nearby($lat: Float!, $lon: Float!, $radius: Int) {
  nearest(lat: $lat, lon: $lon, maxDistance: $radius, first: 100, filterByPlaceTypes: [STOP]) {
    edges {
      node {
        id
        distance
        place {
          __typename
          id
          lat
          lon
          ... on Stop {
            name
            code
            gtfsId
            stoptimesForPatterns {
              pattern {
                headsign
                route {
                  id: gtfsId
                  agency {
                    id: gtfsId
                    name
                  }
                }
              }
              stoptimes {
                serviceDay
                departureDelay
                realtimeState
                realtimeDeparture
                scheduledDeparture
                headsign
              }
            }
          }
        }
      }
    }
  }
}`

const serviceTimeRangeQuery = `{
  serviceTimeRange {
    start
    end
  }
}`
