package ml

import (
	"fmt"
	"sort"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
	"github.com/rs/zerolog/log"
)

// Neighbor is a training point together with its distance from a query.
type Neighbor struct {
	Point    model.Point `json:"point"`
	Distance float64     `json:"distance"`
}

// Neighbors returns the k training points closest to the query, nearest first.
// Points at equal distance keep their training set order.
func Neighbors(query []float64, training []model.Point, k int, metric kmath.Metric) ([]Neighbor, error) {
	if len(training) == 0 {
		return nil, fmt.Errorf("%w: empty training set", kmath.InvalidInputErr)
	}
	if k < 1 || k > len(training) {
		return nil, fmt.Errorf("%w: k=%d must be in [1,%d]", kmath.InvalidInputErr, k, len(training))
	}
	nn := make([]Neighbor, len(training))
	for i, p := range training {
		d, err := kmath.Distance(query, p.Features, metric)
		if err != nil {
			return nil, fmt.Errorf("could not measure distance to training point %d: %w", i, err)
		}
		nn[i] = Neighbor{
			Point:    p,
			Distance: d,
		}
	}
	sort.SliceStable(nn, func(i, j int) bool {
		return nn[i].Distance < nn[j].Distance
	})
	return nn[:k], nil
}

// Classify predicts the label of the query by majority vote among its k nearest neighbors.
// Ties are resolved in favour of the lexicographically smallest label.
func Classify(query []float64, training []model.Point, k int, metric kmath.Metric) (label string, err error) {
	defer func() {
		kmath.Observe("knn", err)
	}()
	label, err = classify(query, training, k, metric)
	if err != nil {
		return "", err
	}
	log.Debug().
		Int("k", k).
		Str("metric", string(metric)).
		Str("label", label).
		Msg("knn vote")
	return label, nil
}

func classify(query []float64, training []model.Point, k int, metric kmath.Metric) (string, error) {
	nn, err := Neighbors(query, training, k, metric)
	if err != nil {
		return "", err
	}
	labels := make([]string, len(nn))
	for i, n := range nn {
		labels[i] = n.Point.Label
	}
	label, _ := Vote(labels)
	return label, nil
}

// Vote returns the most frequent label and its count.
// Ties are resolved in favour of the lexicographically smallest label.
func Vote(labels []string) (string, int) {
	counts := Count(labels)
	var best string
	max := 0
	for label, c := range counts {
		if c > max || (c == max && label < best) {
			best = label
			max = c
		}
	}
	return best, max
}

// Count tallies the given labels.
func Count(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
