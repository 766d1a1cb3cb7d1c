// Package geo provides great-circle distance and bearing math on a spherical
// Earth. All functions are pure.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// DistanceM returns the great-circle distance in meters between two points,
// using the haversine formula.
func DistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BearingDeg returns the forward azimuth from point 1 to point 2 in degrees,
// normalized to [0, 360).
func BearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dLambda := toRad(lon2 - lon1)

	x := math.Sin(dLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	brng := toDeg(math.Atan2(x, y))
	return math.Mod(brng+360.0, 360.0)
}

// HeadingDiffDeg returns the absolute angular difference between two
// headings, wrapped to [0, 180].
func HeadingDiffDeg(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
