package geo

import (
	"math"
	"testing"
)

func TestHaversineZeroDistance(t *testing.T) {
	p := Point{Lat: 1.29, Lon: 103.85}
	if d := Haversine(p, p); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// One hundredth of a degree of latitude is roughly 1.112 km on the equator.
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0.01, Lon: 0}

	d := Haversine(a, b)
	if math.Abs(d-1111.9) > 5 {
		t.Fatalf("expected ~1112m, got %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Point{Lat: 1.29, Lon: 103.85}
	b := Point{Lat: 1.30, Lon: 103.86}

	if d1, d2 := Haversine(a, b), Haversine(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestHaversineOrderingOverLargeSpans(t *testing.T) {
	// At latitude 60 a degree of longitude covers half the ground distance of a
	// degree of latitude; a naive Euclidean comparison gets the ordering wrong.
	q := Point{Lat: 60, Lon: 0}
	byLon := Point{Lat: 60, Lon: 0.9}
	byLat := Point{Lat: 60.5, Lon: 0}

	if Haversine(q, byLon) > Haversine(q, byLat) {
		t.Fatal("expected longitude offset to be closer at high latitude")
	}
}
