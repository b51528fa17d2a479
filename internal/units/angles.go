// Package units provides shared angle conversions and normalisation.
package units

import "math"

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// NormalizeDeg wraps an angle in degrees into the interval [-180, 180).
func NormalizeDeg(deg float64) float64 {
	d := math.Mod(deg+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d - 180.0
}

// NormalizeRad wraps an angle in radians into the interval [-pi, pi).
func NormalizeRad(rad float64) float64 {
	r := math.Mod(rad+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}
