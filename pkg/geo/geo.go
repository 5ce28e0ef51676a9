package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

// Distance returns the haversine great-circle distance in meters between
// two WGS84 coordinates.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Bounds is a rectangular region in degrees.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether the coordinate falls inside the bounds.
// Edges are inclusive.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North &&
		lng >= b.West && lng <= b.East
}

// ImpliedSpeed returns the ground speed in m/s required to travel between
// two coordinates in the given number of seconds. Returns 0 when the
// elapsed time is not positive.
func ImpliedSpeed(lat1, lng1, lat2, lng2, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return Distance(lat1, lng1, lat2, lng2) / elapsedSeconds
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
