package transitindex

import (
	"cmp"
	"math"
	"slices"

	"otpviewer.org/internal/viewer"
)

const earthRadiusMeters = 6371010.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// Distance returns the great-circle distance in meters. Points less than
// 0.2 degrees apart use the equirectangular approximation.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dPhi := phi2 - phi1
	dLambda := toRadians(lon2 - lon1)

	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		x := dLambda * math.Cos((phi1+phi2)/2)
		return earthRadiusMeters * math.Hypot(x, dPhi)
	}

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundsAround returns the box enclosing a circle of radius meters.
func BoundsAround(lat, lon, radius float64) viewer.Bounds {
	latOffset := radius / earthRadiusMeters * 180 / math.Pi
	lonOffset := radius / (earthRadiusMeters * math.Cos(toRadians(lat))) * 180 / math.Pi
	return viewer.Bounds{
		MinLat: lat - latOffset,
		MaxLat: lat + latOffset,
		MinLon: lon - lonOffset,
		MaxLon: lon + lonOffset,
	}
}

// NearStop is an indexed stop with its distance to a query point.
type NearStop struct {
	viewer.PatternStop
	Distance float64 `json:"distance"`
}

// StopsNear returns the indexed stops within radius meters, nearest first.
func (ix *Index) StopsNear(lat, lon, radius float64) []NearStop {
	out := []NearStop{}
	for _, s := range ix.StopsWithinBounds(BoundsAround(lat, lon, radius)) {
		d := Distance(lat, lon, s.Lat, s.Lon)
		if d <= radius {
			out = append(out, NearStop{PatternStop: s, Distance: d})
		}
	}
	slices.SortStableFunc(out, func(a, b NearStop) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out
}
