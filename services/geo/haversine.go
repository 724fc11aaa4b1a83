// Package geo computes great-circle distances between GeoJSON points.
package geo

import (
	"math"

	"servicehub/apperrors"
	"servicehub/models"
)

const EarthRadiusKm = 6371.0

// Validate checks that p has a longitude in [-180,180] and a latitude in [-90,90].
func Validate(p models.GeoPoint) error {
	if !p.HasCoordinates() {
		return apperrors.InvalidCoordinates("point needs [longitude, latitude], got %d components", len(p.Coordinates))
	}
	lon, lat := p.Coordinates[0], p.Coordinates[1]
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return apperrors.InvalidCoordinates("longitude %v out of range", lon)
	}
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.InvalidCoordinates("latitude %v out of range", lat)
	}
	return nil
}

// Distance returns the Haversine distance in kilometers.
func Distance(a, b models.GeoPoint) (float64, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}
	if err := Validate(b); err != nil {
		return 0, err
	}
	return haversine(a.Coordinates[1], a.Coordinates[0], b.Coordinates[1], b.Coordinates[0]), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}
