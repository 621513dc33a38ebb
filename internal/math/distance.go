package math

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// MinkowskiOrder is the fixed order p of the Minkowski metric.
const MinkowskiOrder = 3

// Metric defines how the distance of two vectors is measured.
type Metric string

const (
	// Euclidean is the straight line distance.
	Euclidean Metric = "euclidean"
	// Manhattan is the sum of the absolute differences.
	Manhattan Metric = "manhattan"
	// Minkowski is the generalised distance of order MinkowskiOrder.
	Minkowski Metric = "minkowski"
)

// Metrics lists all known metrics.
var Metrics = []Metric{Euclidean, Manhattan, Minkowski}

// ParseMetric returns the metric with the given name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, metric := range Metrics {
		if metric == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown metric '%s'", InvalidInputErr, s)
}

// order returns the L-norm order for the metric.
func (m Metric) order() (float64, error) {
	switch m {
	case Euclidean:
		return 2, nil
	case Manhattan:
		return 1, nil
	case Minkowski:
		return MinkowskiOrder, nil
	}
	return 0, fmt.Errorf("%w: unknown metric '%s'", InvalidInputErr, m)
}

// Distance returns the distance of a and b under the given metric.
func Distance(a, b []float64, metric Metric) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d vs %d", InvalidInputErr, len(a), len(b))
	}
	l, err := metric.order()
	if err != nil {
		return 0, err
	}
	return floats.Distance(a, b, l), nil
}

// MustDistance is like Distance, but panics on invalid input.
// It is meant for callers that already validated dimensions and metric.
func MustDistance(a, b []float64, metric Metric) float64 {
	d, err := Distance(a, b, metric)
	if err != nil {
		panic(err.Error())
	}
	return d
}
