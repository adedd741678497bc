package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	p := Point{Lat: 29.2183, Lng: 79.5130}
	if d := HaversineKm(p, p); d < 0 || d > 1e-9 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}
}

func TestHaversineKm_OneDegreeOfLatitude(t *testing.T) {
	d := HaversineKm(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	if math.Abs(d-111.195) > 0.01 {
		t.Fatalf("1 degree of latitude = %v km, want ~111.195", d)
	}
}

func TestRoundedKm(t *testing.T) {
	// Haldwani to Nainital is roughly 18.6 km as the crow flies.
	d := RoundedKm(Point{Lat: 29.2183, Lng: 79.5130}, Point{Lat: 29.3803, Lng: 79.4636})
	if d < 17 || d > 20 {
		t.Fatalf("unexpected distance %v", d)
	}
	if d != math.Round(d*10)/10 {
		t.Fatalf("distance not rounded to one decimal: %v", d)
	}
}

func TestPointOf(t *testing.T) {
	lat := 1.0
	if _, ok := PointOf(&lat, nil); ok {
		t.Fatalf("expected missing longitude to yield no point")
	}
	lng := 2.0
	p, ok := PointOf(&lat, &lng)
	if !ok || p.Lat != 1 || p.Lng != 2 {
		t.Fatalf("PointOf = %+v, %v", p, ok)
	}
}
