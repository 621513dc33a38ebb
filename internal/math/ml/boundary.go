package ml

import (
	"fmt"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
)

const (
	// DefaultResolution is the number of cells per axis of a decision boundary grid.
	DefaultResolution = 15
	// boundaryPadding is the fraction of the data range added on each side of the grid.
	boundaryPadding = 0.1
)

// Cell is a grid cell centre with the label predicted for it.
type Cell struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Boundary classifies the centres of a resolution x resolution grid
// spanning the padded bounding box of the 2-D training data.
// Cells are returned row by row, starting from the smallest y.
func Boundary(training []model.Point, k int, metric kmath.Metric, resolution int) (cells []Cell, err error) {
	defer func() {
		kmath.Observe("knn-boundary", err)
	}()
	if len(training) == 0 {
		return nil, fmt.Errorf("%w: empty training set", kmath.InvalidInputErr)
	}
	if resolution < 1 {
		return nil, fmt.Errorf("%w: resolution must be positive: %d", kmath.InvalidInputErr, resolution)
	}
	for i, p := range training {
		if p.Dim() != 2 {
			return nil, fmt.Errorf("%w: boundary needs 2-D points, point %d has %d features", kmath.InvalidInputErr, i, p.Dim())
		}
	}

	minX, maxX := bounds(training, 0)
	minY, maxY := bounds(training, 1)
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	dx := (maxX - minX) / float64(resolution)
	dy := (maxY - minY) / float64(resolution)

	cells = make([]Cell, 0, resolution*resolution)
	for j := 0; j < resolution; j++ {
		y := minY + (float64(j)+0.5)*dy
		for i := 0; i < resolution; i++ {
			x := minX + (float64(i)+0.5)*dx
			label, err := classify([]float64{x, y}, training, k, metric)
			if err != nil {
				return nil, fmt.Errorf("could not classify cell (%d,%d): %w", i, j, err)
			}
			cells = append(cells, Cell{
				X:     x,
				Y:     y,
				Label: label,
			})
		}
	}
	return cells, nil
}

func bounds(points []model.Point, dim int) (float64, float64) {
	min := points[0].Features[dim]
	max := min
	for _, p := range points {
		v := p.Features[dim]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func pad(min, max float64) (float64, float64) {
	p := (max - min) * boundaryPadding
	if p == 0 {
		p = 1
	}
	return min - p, max + p
}
