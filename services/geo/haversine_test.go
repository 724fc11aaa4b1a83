package geo

import (
	"math"
	"testing"

	"servicehub/apperrors"
	"servicehub/models"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		name   string
		a, b   models.GeoPoint
		wantKm float64
		tol    float64
	}{
		{"same point", models.NewPoint(36.82, -1.29), models.NewPoint(36.82, -1.29), 0, 1e-9},
		{"one degree of latitude", models.NewPoint(0, 0), models.NewPoint(0, 1), 111.195, 0.01},
		{"one degree of longitude at equator", models.NewPoint(0, 0), models.NewPoint(1, 0), 111.195, 0.01},
		{"london to paris", models.NewPoint(-0.1278, 51.5074), models.NewPoint(2.3522, 48.8566), 343.5, 1.0},
	}
	for _, tt := range cases {
		got, err := Distance(tt.a, tt.b)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if math.Abs(got-tt.wantKm) > tt.tol {
			t.Fatalf("%s: Distance()=%.3f, want %.3f±%.3f", tt.name, got, tt.wantKm, tt.tol)
		}
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a, b := models.NewPoint(36.8219, -1.2921), models.NewPoint(39.6682, -4.0435)
	ab, _ := Distance(a, b)
	ba, _ := Distance(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
	}
}

func TestDistanceRejectsInvalidCoordinates(t *testing.T) {
	valid := models.NewPoint(0, 0)
	cases := []models.GeoPoint{
		{Type: "Point"},
		{Type: "Point", Coordinates: []float64{10}},
		models.NewPoint(181, 0),
		models.NewPoint(-180.5, 0),
		models.NewPoint(0, 90.01),
		models.NewPoint(0, -91),
		models.NewPoint(math.NaN(), 0),
	}
	for _, p := range cases {
		if _, err := Distance(valid, p); !apperrors.Is(err, apperrors.KindInvalidCoordinates) {
			t.Fatalf("Distance(%v) err=%v, want InvalidCoordinates", p.Coordinates, err)
		}
		if _, err := Distance(p, valid); !apperrors.Is(err, apperrors.KindInvalidCoordinates) {
			t.Fatalf("Distance(%v) reversed err=%v, want InvalidCoordinates", p.Coordinates, err)
		}
	}
}
