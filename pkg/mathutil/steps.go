package mathutil

import "math"

// Clamp limits val to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// SnapToStep moves val to the nearest point of the grid origin + k*step. A
// non-positive step leaves val unchanged.
func SnapToStep(val, origin, step float64) float64 {
	if step <= 0 {
		return val
	}
	steps := math.Round((val - origin) / step)
	return origin + steps*step
}

// OnStep reports whether val lies on the grid origin + k*step, allowing for
// floating point error.
func OnStep(val, origin, step float64) bool {
	if step <= 0 {
		return true
	}
	return WithinTolerance(SnapToStep(val, origin, step), val, step*1e-6)
}
