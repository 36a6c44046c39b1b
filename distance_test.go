package main

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	// Seoul City Hall to Busan Station, roughly 325 km great-circle.
	seoulLat, seoulLng := 37.5665, 126.9780
	busanLat, busanLng := 35.1151, 129.0403

	got := distanceKm(seoulLat, seoulLng, busanLat, busanLng)
	if got < 315 || got > 335 {
		t.Errorf("Seoul-Busan distance out of range: got %f km", got)
	}
}

func TestDistanceKm_Identity(t *testing.T) {
	got := distanceKm(37.5665, 126.9780, 37.5665, 126.9780)
	if got != 0 {
		t.Errorf("Expected zero distance between identical points, got %f", got)
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	ab := distanceKm(37.5665, 126.9780, 37.4882, 127.0857)
	ba := distanceKm(37.4882, 127.0857, 37.5665, 126.9780)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Expected symmetric distances, got %f and %f", ab, ba)
	}
}

func TestDistanceKm_ShortRange(t *testing.T) {
	// Seoul City Hall to Gwanghwamun, well under 2 km.
	got := distanceKm(37.5665, 126.9780, 37.5759, 126.9769)
	if got <= 0 || got > 2 {
		t.Errorf("Expected a short positive distance, got %f km", got)
	}
}
