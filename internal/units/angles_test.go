package units

import (
	"math"
	"testing"
)

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float64{-720, -180, -30, 0, 30, 90, 180, 360, 1234.5} {
		got := RadToDeg(DegToRad(deg))
		if math.Abs(got-deg) > 1e-9 {
			t.Errorf("RadToDeg(DegToRad(%v)) = %v", deg, got)
		}
	}
}

func TestDegToRad(t *testing.T) {
	if got := DegToRad(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("DegToRad(180) = %v, want pi", got)
	}
	if got := DegToRad(30); math.Abs(got-math.Pi/6) > 1e-12 {
		t.Errorf("DegToRad(30) = %v, want pi/6", got)
	}
}

func TestNormalizeDeg(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{180, -180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, -180},
		{-540, -180},
		{30, 30},
	}
	for _, tt := range tests {
		if got := NormalizeDeg(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeDeg(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRad(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, -math.Pi},
		{-math.Pi, -math.Pi},
		{3 * math.Pi, -math.Pi},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
	}
	for _, tt := range tests {
		if got := NormalizeRad(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeRad(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
