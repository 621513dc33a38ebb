package math

import "math"

// Series returns limit values spaced by factor, starting at 0.
func Series(factor float64, limit int) []float64 {
	xx := make([]float64, 0, limit)
	for i := 0; i < limit; i++ {
		xx = append(xx, factor*float64(i))
	}
	return xx
}

// Sine returns the values factor * sin(x * v) for each of the given x.
func Sine(factor float64, xx []float64, v float64) []float64 {
	yy := make([]float64, 0, len(xx))
	for _, x := range xx {
		yy = append(yy, factor*math.Sin(x*v))
	}
	return yy
}
