package math

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/drakos74/ml-kernels/internal/buffer"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleNormal draws n independent samples from Normal(mean, stddev) with the Box-Muller transform.
func SampleNormal(mean, stddev float64, n int, rng *rand.Rand) (samples []float64, err error) {
	defer func() {
		Observe("normal", err)
	}()
	if stddev <= 0 {
		return nil, fmt.Errorf("%w: stddev must be positive: %v", InvalidInputErr, stddev)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive: %d", InvalidInputErr, n)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: no random source", InvalidInputErr)
	}
	samples = make([]float64, 0, n+1)
	for len(samples) < n {
		z0, z1 := BoxMuller(rng)
		samples = append(samples, mean+stddev*z0, mean+stddev*z1)
	}
	return samples[:n], nil
}

// BoxMuller returns two independent standard normal variates.
func BoxMuller(rng *rand.Rand) (float64, float64) {
	// Float64 is in [0,1), so u1 is in (0,1]
	u1 := 1 - rng.Float64()
	u2 := rng.Float64()
	m := math.Sqrt(-2 * math.Log(u1))
	return m * math.Cos(2*math.Pi*u2), m * math.Sin(2*math.Pi*u2)
}

// NormalDensity evaluates the gaussian probability density at x.
func NormalDensity(x, mean, stddev float64) (float64, error) {
	if stddev <= 0 {
		return 0, fmt.Errorf("%w: stddev must be positive: %v", InvalidInputErr, stddev)
	}
	return distuv.Normal{Mu: mean, Sigma: stddev}.Prob(x), nil
}

// DensityCurve evaluates the gaussian density on steps equidistant points in [from, to].
func DensityCurve(mean, stddev, from, to float64, steps int) ([][2]float64, error) {
	if stddev <= 0 {
		return nil, fmt.Errorf("%w: stddev must be positive: %v", InvalidInputErr, stddev)
	}
	if steps < 2 || to <= from {
		return nil, fmt.Errorf("%w: need at least 2 steps over a non-empty range: [%v,%v] x %d", InvalidInputErr, from, to, steps)
	}
	dist := distuv.Normal{Mu: mean, Sigma: stddev}
	step := (to - from) / float64(steps-1)
	xx := Series(step, steps)
	curve := make([][2]float64, len(xx))
	for i, x := range xx {
		curve[i] = [2]float64{from + x, dist.Prob(from + x)}
	}
	return curve, nil
}

// Percentiles extracts the given ranks from the samples.
// Each rank p in [0,1] maps to the sorted sample at index floor(p*n), without interpolation.
// p = 1 maps to the largest sample.
func Percentiles(samples []float64, ranks []float64) (map[float64]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", InvalidInputErr)
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	n := len(sorted)
	pp := make(map[float64]float64, len(ranks))
	for _, p := range ranks {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("%w: rank out of [0,1]: %v", InvalidInputErr, p)
		}
		i := int(math.Floor(p * float64(n)))
		if i >= n {
			i = n - 1
		}
		pp[p] = sorted[i]
	}
	return pp, nil
}

// Summary describes a set of samples.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes the summary of the given samples.
// The standard deviation is the population one.
func Summarize(samples []float64) Summary {
	s := buffer.StatsOf(samples...)
	return Summary{
		Count:  s.Count(),
		Mean:   s.Avg(),
		StdDev: s.StDev(),
		Min:    s.Min(),
		Max:    s.Max(),
	}
}

// Bin is a histogram bucket covering [From, To).
type Bin struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count float64 `json:"count"`
}

// Histogram groups the samples into the given number of equal width bins.
func Histogram(samples []float64, bins int) ([]Bin, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", InvalidInputErr)
	}
	if bins < 1 {
		return nil, fmt.Errorf("%w: need at least one bin: %d", InvalidInputErr, bins)
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	lo := sorted[0]
	hi := sorted[len(sorted)-1]
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}
	dividers := make([]float64, bins+1)
	for i := range dividers {
		dividers[i] = lo + float64(i)*width
	}
	// the last divider is exclusive
	dividers[bins] = math.Nextafter(math.Max(dividers[bins], hi), math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	hist := make([]Bin, bins)
	for i := range hist {
		hist[i] = Bin{
			From:  dividers[i],
			To:    dividers[i+1],
			Count: counts[i],
		}
	}
	return hist, nil
}

// WithinSigma returns the fraction of samples within k standard deviations of the mean.
func WithinSigma(samples []float64, mean, stddev, k float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	c := 0
	for _, s := range samples {
		if math.Abs(s-mean) <= k*stddev {
			c++
		}
	}
	return float64(c) / float64(len(samples))
}
