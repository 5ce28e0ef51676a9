package geo

import (
	"math"
	"testing"
)

func TestDistance_IdenticalPoints(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{51.5074, -0.1278},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}

	for _, p := range points {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("Distance(%v, %v, same) = %f, want 0", p[0], p[1], d)
		}
	}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := []struct {
		lat1, lng1, lat2, lng2 float64
	}{
		{51.5074, -0.1278, 48.8566, 2.3522},
		{40.7128, -74.0060, 34.0522, -118.2437},
		{-33.8688, 151.2093, 35.6762, 139.6503},
	}

	for _, p := range pairs {
		ab := Distance(p.lat1, p.lng1, p.lat2, p.lng2)
		ba := Distance(p.lat2, p.lng2, p.lat1, p.lng1)
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("Distance not symmetric: %f != %f", ab, ba)
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One hundredth of a degree of latitude is ~1112 m.
	d := Distance(0, 0, 0.01, 0)
	if math.Abs(d-1111.95) > 1 {
		t.Errorf("Distance(0,0 -> 0.01,0) = %f, want ~1111.95", d)
	}

	// London to Paris, ~343.5 km.
	d = Distance(51.5074, -0.1278, 48.8566, 2.3522)
	if d < 340000 || d > 347000 {
		t.Errorf("London-Paris distance = %f, want ~343500", d)
	}
}

func TestBounds_Contains(t *testing.T) {
	bounds := Bounds{North: 42.1, South: 29.0, East: 34.9, West: 24.7}

	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"inside", 35.0, 30.0, true},
		{"north edge inclusive", 42.1, 30.0, true},
		{"south edge inclusive", 29.0, 30.0, true},
		{"east edge inclusive", 35.0, 34.9, true},
		{"west edge inclusive", 35.0, 24.7, true},
		{"north of bounds", 42.2, 30.0, false},
		{"west of bounds", 35.0, 24.6, false},
		{"antipode", -35.0, -150.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bounds.Contains(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestImpliedSpeed(t *testing.T) {
	// ~1112 m in 60 seconds is ~18.5 m/s.
	speed := ImpliedSpeed(0, 0, 0.01, 0, 60)
	if math.Abs(speed-18.53) > 0.1 {
		t.Errorf("ImpliedSpeed = %f, want ~18.53", speed)
	}

	if speed := ImpliedSpeed(0, 0, 0.01, 0, 0); speed != 0 {
		t.Errorf("ImpliedSpeed with zero elapsed = %f, want 0", speed)
	}

	if speed := ImpliedSpeed(0, 0, 0.01, 0, -10); speed != 0 {
		t.Errorf("ImpliedSpeed with negative elapsed = %f, want 0", speed)
	}
}
