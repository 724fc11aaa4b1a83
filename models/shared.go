package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewPoint builds a GeoJSON point from longitude and latitude.
func NewPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// HasCoordinates reports whether both components are present.
func (p GeoPoint) HasCoordinates() bool {
	return len(p.Coordinates) >= 2
}

// Location is a delivery address with resolved coordinates.
type Location struct {
	Address     string   `bson:"address,omitempty" json:"address,omitempty"`
	Coordinates GeoPoint `bson:"coordinates" json:"coordinates"`
}
