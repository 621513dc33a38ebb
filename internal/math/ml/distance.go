package ml

import (
	"fmt"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
)

// NewDistanceMatrix computes all pairwise distances of the given points.
// Points are identified by their unique ID; the matrix is always computed from scratch.
func NewDistanceMatrix(points []model.Point, metric kmath.Metric) (*model.DistanceMatrix, error) {
	ids := make([]string, len(points))
	seen := make(map[string]int, len(points))
	for i, p := range points {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: point %d has no id", kmath.InvalidInputErr, i)
		}
		if j, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: points %d and %d share the id '%s'", kmath.InvalidInputErr, j, i, p.ID)
		}
		seen[p.ID] = i
		ids[i] = p.ID
	}
	m := model.NewDistanceMatrix(ids)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d, err := kmath.Distance(points[i].Features, points[j].Features, metric)
			if err != nil {
				return nil, fmt.Errorf("could not measure distance of '%s' and '%s': %w", ids[i], ids[j], err)
			}
			m.Set(i, j, d)
		}
	}
	return m, nil
}
