package geoquest

import "math"

const earthRadiusMeters = 6371000

// Distance computes the great-circle distance in meters between two
// points using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// CheckGeofence reports whether a submission point is inside the zone's
// acceptance circle. The accepted radius is the zone's configured radius
// plus tolerance; zones without a radius fall back to fallbackRadius.
// The measured distance is always returned for user feedback.
func CheckGeofence(z Zone, lat, lng, tolerance, fallbackRadius float64) (distance float64, ok bool) {
	distance = Distance(lat, lng, z.Lat, z.Lng)
	max := fallbackRadius
	if z.RadiusMeters > 0 {
		max = z.RadiusMeters + tolerance
	}
	return distance, distance <= max
}
