package math

import (
	"math"

	"github.com/drakos74/ml-kernels/internal/buffer"
)

// Pearson computes the pearson correlation coefficient of the given (x,y) pairs.
// It returns exactly 0 for less than 2 points and for sets without variance in x or y.
func Pearson(points [][2]float64) float64 {
	if len(points) < 2 || constant(points, 0) || constant(points, 1) {
		return 0
	}
	n := float64(len(points))
	var mx, my float64
	for _, p := range points {
		mx += p[0]
		my += p[1]
	}
	mx /= n
	my /= n
	var sxy, sxx, syy float64
	for _, p := range points {
		dx := p[0] - mx
		dy := p[1] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	r := sxy / (math.Sqrt(sxx) * math.Sqrt(syy))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	// rounding can push a perfect fit slightly out of range
	return math.Max(-1, math.Min(1, r))
}

// constant returns true if all points share the same value at the given axis.
func constant(points [][2]float64, axis int) bool {
	for _, p := range points[1:] {
		if p[axis] != points[0][axis] {
			return false
		}
	}
	return true
}

// Line is a linear trend y = Slope * x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Trend fits the least squares line through the given points based on their correlation.
// A zero standard deviation in x is treated as 1.
func Trend(points [][2]float64) Line {
	xs := buffer.NewStats()
	ys := buffer.NewStats()
	for _, p := range points {
		xs.Push(p[0])
		ys.Push(p[1])
	}
	r := Pearson(points)
	sx := xs.StDev()
	if sx == 0 {
		sx = 1
	}
	slope := r * (ys.StDev() / sx)
	return Line{
		Slope:     slope,
		Intercept: ys.Avg() - slope*xs.Avg(),
		R:         r,
	}
}

// Direction is the sign of a correlation.
type Direction string

const (
	// NoDirection is used when there is no linear association.
	NoDirection Direction = "none"
	// Positive means both variables move together.
	Positive Direction = "positive"
	// Negative means the variables move in opposite directions.
	Negative Direction = "negative"
)

// Correlation describes the strength of a correlation coefficient.
type Correlation struct {
	R         float64   `json:"r"`
	Strength  string    `json:"strength"`
	Direction Direction `json:"direction"`
}

// Strength classifies the given coefficient.
// |r| < 0.1 : none, < 0.3 : weak, < 0.7 : moderate, otherwise strong.
func Strength(r float64) Correlation {
	c := Correlation{R: r}
	abs := math.Abs(r)
	switch {
	case abs < 0.1:
		c.Strength = "none"
	case abs < 0.3:
		c.Strength = "weak"
	case abs < 0.7:
		c.Strength = "moderate"
	default:
		c.Strength = "strong"
	}
	switch {
	case abs < 0.1:
		c.Direction = NoDirection
	case r > 0:
		c.Direction = Positive
	default:
		c.Direction = Negative
	}
	return c
}
