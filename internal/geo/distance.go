package geo

import "math"

// EarthRadiusKm is Earth's mean radius in kilometres for Haversine calculation.
const EarthRadiusKm = 6371.0088

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// PointOf returns a Point when both coordinates are present.
func PointOf(lat, lng *float64) (Point, bool) {
	if lat == nil || lng == nil {
		return Point{}, false
	}
	return Point{Lat: *lat, Lng: *lng}, true
}

// HaversineKm calculates the great-circle distance between two points
// on Earth in kilometres using the Haversine formula.
func HaversineKm(a, b Point) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// RoundedKm returns the distance rounded to one decimal place.
func RoundedKm(a, b Point) float64 {
	return math.Round(HaversineKm(a, b)*10) / 10
}
