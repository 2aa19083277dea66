package geo

import "math"

const earthRadiusKM = 6371.0

// Distance returns the Haversine distance between two coordinates in kilometers.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// Bearing returns the initial bearing from point 1 to point 2 in degrees,
// normalized to [0, 360).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := toRadians(lat1)
	rLat2 := toRadians(lat2)
	dLon := toRadians(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) - math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// IsWithinRadius reports whether a point lies within radiusKM of a center.
func IsWithinRadius(centerLat, centerLon, pointLat, pointLon, radiusKM float64) bool {
	return Distance(centerLat, centerLon, pointLat, pointLon) <= radiusKM
}

// EstimatedDurationMinutes estimates travel time for a distance at an
// average speed, in whole minutes.
func EstimatedDurationMinutes(distanceKM, avgSpeedKMH float64) int {
	if avgSpeedKMH <= 0 {
		avgSpeedKMH = 30.0
	}
	return int(distanceKM / avgSpeedKMH * 60)
}

// ValidCoordinates reports whether lat/lon are within valid ranges.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
