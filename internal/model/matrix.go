package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DistanceMatrix holds the pairwise distances of a set of points.
// It is symmetric with a zero diagonal.
type DistanceMatrix struct {
	ids   []string
	index map[string]int
	dist  *mat.SymDense
}

// NewDistanceMatrix creates an empty matrix for the given point ids.
func NewDistanceMatrix(ids []string) *DistanceMatrix {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	var dist *mat.SymDense
	if len(ids) > 0 {
		dist = mat.NewSymDense(len(ids), nil)
	}
	return &DistanceMatrix{
		ids:   ids,
		index: index,
		dist:  dist,
	}
}

// Set sets the distance between the points at i and j.
// The diagonal is always zero.
func (m *DistanceMatrix) Set(i, j int, d float64) {
	if i == j {
		return
	}
	m.dist.SetSym(i, j, d)
}

// At returns the distance between the points at i and j.
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.dist.At(i, j)
}

// Between returns the distance between the points with the given ids.
func (m *DistanceMatrix) Between(a, b string) (float64, error) {
	i, ok := m.index[a]
	if !ok {
		return 0, fmt.Errorf("unknown point '%s'", a)
	}
	j, ok := m.index[b]
	if !ok {
		return 0, fmt.Errorf("unknown point '%s'", b)
	}
	return m.At(i, j), nil
}

// IDs returns the point ids in matrix order.
func (m *DistanceMatrix) IDs() []string {
	return m.ids
}

// Size returns the number of points in the matrix.
func (m *DistanceMatrix) Size() int {
	return len(m.ids)
}
