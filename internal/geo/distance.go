package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusMeters is Earth's mean radius in meters.
	EarthRadiusMeters = 6371000.0

	// EarthCircumferenceMeters is the equatorial circumference in meters.
	EarthCircumferenceMeters = 40075000.0

	// equatorMetersPerPixel is meters covered by one pixel of a 256px tile
	// at zoom 0 on the equator.
	equatorMetersPerPixel = 156543.03392
)

// Distance calculates the great-circle distance between two points in meters
// using the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// MetersPerPixel returns the ground resolution of one screen pixel at the
// given zoom level and latitude, assuming 256px Web Mercator tiles.
func MetersPerPixel(zoom int, lat float64) float64 {
	return equatorMetersPerPixel * math.Cos(lat*math.Pi/180) / math.Pow(2, float64(zoom))
}

// MetersToPixels converts a ground distance to screen pixels at the given
// zoom level and latitude.
func MetersToPixels(meters float64, zoom int, lat float64) float64 {
	return meters / MetersPerPixel(zoom, lat)
}

// ClusterRadius returns the ground distance in meters covered by
// radiusPixels screen pixels at the given zoom level. This is the merge
// distance for marker clustering: markers closer than this overlap on screen.
func ClusterRadius(zoom int, radiusPixels float64) float64 {
	return EarthCircumferenceMeters / math.Pow(2, float64(zoom)) * (radiusPixels / 256.0)
}
