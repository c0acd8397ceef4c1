package utils

import (
	"math"

	"carpool/internal/models"
)

// CalculateDistance returns the great-circle distance between two
// locations in kilometers.
func CalculateDistance(a, b models.Location) float64 {
	return haversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

func IsWithinRadius(a, b models.Location, radiusKM float64) bool {
	return CalculateDistance(a, b) <= radiusKM
}
