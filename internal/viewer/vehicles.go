package viewer

import (
	"time"

	"github.com/OneBusAway/go-gtfs"
	"otpviewer.org/internal/otp"
)

// VehiclePosition is one vehicle of a route as drawn by the route viewer.
type VehiclePosition struct {
	Heading      *float64 `json:"heading,omitempty"`
	Label        string   `json:"label,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	NextStopID   string   `json:"nextStopId,omitempty"`
	NextStopName string   `json:"nextStopName,omitempty"`
	PatternID    string   `json:"patternId,omitempty"`
	Seconds      int64    `json:"seconds"`
	Speed        float64  `json:"speed"`
	StopStatus   string   `json:"stopStatus,omitempty"`
	VehicleID    string   `json:"vehicleId"`
	// Stale is set when the position is missing a timestamp or is too old.
	Stale bool `json:"stale"`
}

// FlattenVehiclePositions collects the vehicles of every pattern of a route.
func FlattenVehiclePositions(patterns []otp.Pattern) []VehiclePosition {
	out := []VehiclePosition{}
	for _, p := range patterns {
		for _, pos := range p.VehiclePositions {
			if pos == nil {
				continue
			}
			v := VehiclePosition{
				Heading:   pos.Heading,
				Label:     pos.Label,
				Lat:       pos.Lat,
				Lon:       pos.Lon,
				Seconds:   pos.LastUpdated,
				VehicleID: pos.VehicleID,
			}
			if pos.Speed != nil {
				v.Speed = *pos.Speed
			}
			if rel := pos.StopRelationship; rel != nil {
				v.StopStatus = rel.Status
				if rel.Stop != nil {
					v.NextStopID = rel.Stop.ID
					v.NextStopName = rel.Stop.Name
				}
			}
			if pos.Trip != nil && pos.Trip.Pattern != nil {
				v.PatternID = pos.Trip.Pattern.ID
			}
			out = append(out, v)
		}
	}
	return out
}

// currentStatus maps OTP stop relationship statuses onto GTFS-realtime.
func currentStatus(status string) *gtfs.CurrentStatus {
	var s gtfs.CurrentStatus
	switch status {
	case "INCOMING_AT":
		s = gtfs.CurrentStatus(0)
	case "STOPPED_AT":
		s = gtfs.CurrentStatus(1)
	case "IN_TRANSIT_TO":
		s = gtfs.CurrentStatus(2)
	default:
		return nil
	}
	return &s
}

// ToGTFSVehicle converts the position into a GTFS-realtime vehicle of routeID.
func (v VehiclePosition) ToGTFSVehicle(routeID string) gtfs.Vehicle {
	vehicle := gtfs.Vehicle{
		ID:            &gtfs.VehicleID{ID: v.VehicleID, Label: v.Label},
		CurrentStatus: currentStatus(v.StopStatus),
		Trip: &gtfs.Trip{
			ID: gtfs.TripID{RouteID: routeID},
		},
	}
	if v.Seconds > 0 {
		ts := time.Unix(v.Seconds, 0)
		vehicle.Timestamp = &ts
	}
	if v.NextStopID != "" {
		stopID := v.NextStopID
		vehicle.StopID = &stopID
	}
	if v.Lat != nil && v.Lon != nil {
		lat, lon := float32(*v.Lat), float32(*v.Lon)
		speed := float32(v.Speed)
		vehicle.Position = &gtfs.Position{Latitude: &lat, Longitude: &lon, Speed: &speed}
		if v.Heading != nil {
			bearing := float32(*v.Heading)
			vehicle.Position.Bearing = &bearing
		}
	}
	return vehicle
}

// StaleDetector checks whether a vehicle position is too old to show. OTP
// keeps serving the last known position of vehicles that stopped reporting.
type StaleDetector struct {
	threshold time.Duration
}

// NewStaleDetector returns a detector with a 15 minute threshold.
func NewStaleDetector() *StaleDetector {
	return &StaleDetector{threshold: 15 * time.Minute}
}

// WithThreshold replaces the threshold and returns the detector.
func (d *StaleDetector) WithThreshold(threshold time.Duration) *StaleDetector {
	d.threshold = threshold
	return d
}

// Check returns true when the vehicle's timestamp is missing or older than the threshold.
func (d *StaleDetector) Check(vehicle *gtfs.Vehicle, currentTime time.Time) bool {
	if vehicle == nil || vehicle.Timestamp == nil {
		return true
	}
	return currentTime.Sub(*vehicle.Timestamp) > d.threshold
}

// MarkStaleVehicles flags the positions the detector considers stale. Every
// vehicle is kept; the front-end decides how to draw stale ones.
func MarkStaleVehicles(vehicles []VehiclePosition, routeID string, d *StaleDetector, now time.Time) []VehiclePosition {
	out := make([]VehiclePosition, 0, len(vehicles))
	for _, v := range vehicles {
		gv := v.ToGTFSVehicle(routeID)
		v.Stale = d.Check(&gv, now)
		out = append(out, v)
	}
	return out
}
