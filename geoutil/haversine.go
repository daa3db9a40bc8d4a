// Package geoutil provides the great-circle distance math the feed uses
// for proximity filtering and ranking.
package geoutil

import "math"

// EarthRadiusKm is the IUGG mean earth radius.
const EarthRadiusKm = 6371.0088

// DistanceKm returns the haversine great-circle distance in kilometers
// between two coordinate pairs given in degrees.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lng2 - lng1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// clamp guards against fp overshoot for near-antipodal points
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// DistanceMeters is DistanceKm in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return DistanceKm(lat1, lng1, lat2, lng2) * 1000
}
