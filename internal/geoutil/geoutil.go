// Package geoutil provides the small amount of spherical geometry the
// discovery and ranking stages need: great-circle distance and a bounding
// box prefilter for candidate scans.
package geoutil

import (
	"math"

	"github.com/twpayne/go-geom"
)

const earthRadiusMeters = 6371000

// HaversineMeters returns the great-circle distance between two WGS84
// points in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundsAround returns a bounding box covering a circle of the given radius
// around a point. The longitude delta widens with latitude; near the poles
// the box degenerates to the full longitude range.
func BoundsAround(lat, lon, radiusMeters float64) *geom.Bounds {
	dLat := radiusMeters / earthRadiusMeters * 180 / math.Pi

	dLon := 180.0
	if cos := math.Cos(lat * math.Pi / 180); cos > 1e-9 {
		dLon = dLat / cos
	}

	return geom.NewBounds(geom.XY).Set(
		lon-dLon, lat-dLat,
		lon+dLon, lat+dLat,
	)
}

// InBounds reports whether a point lies inside the box. Used as a cheap
// prefilter before the exact haversine check.
func InBounds(b *geom.Bounds, lat, lon float64) bool {
	return b.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}
