package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Dataset is a named collection of points with descriptive metadata.
type Dataset struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	XLabel      string   `json:"x_label,omitempty"`
	YLabel      string   `json:"y_label,omitempty"`
	Features    []string `json:"features,omitempty"`
	// Groups is the known number of ground-truth groups, if any.
	Groups int     `json:"groups,omitempty"`
	Points []Point `json:"points"`
}

// Normalize fills in missing point identifiers and checks that all points share the same dimension.
func (d *Dataset) Normalize() error {
	dim := -1
	for i := range d.Points {
		if d.Points[i].ID == "" {
			d.Points[i].ID = uuid.New().String()
		}
		if dim < 0 {
			dim = d.Points[i].Dim()
		} else if d.Points[i].Dim() != dim {
			return fmt.Errorf("inconsistent dimensions in dataset '%s' at point %d: %d vs %d", d.Name, i, d.Points[i].Dim(), dim)
		}
	}
	if len(d.Features) > 0 && dim >= 0 && len(d.Features) != dim {
		return fmt.Errorf("dataset '%s' names %d features but points have %d", d.Name, len(d.Features), dim)
	}
	return nil
}

// Size returns the number of points.
func (d Dataset) Size() int {
	return len(d.Points)
}

// XY returns the first two features of every point.
func (d Dataset) XY() [][2]float64 {
	xy := make([][2]float64, len(d.Points))
	for i, p := range d.Points {
		xy[i] = [2]float64{p.X(), p.Y()}
	}
	return xy
}

// Matrix returns a copy of the feature vectors of all points.
func (d Dataset) Matrix() [][]float64 {
	m := make([][]float64, len(d.Points))
	for i, p := range d.Points {
		m[i] = p.Clone().Features
	}
	return m
}

// Labels returns the labels of all points in order.
func (d Dataset) Labels() []string {
	ll := make([]string, len(d.Points))
	for i, p := range d.Points {
		ll[i] = p.Label
	}
	return ll
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	pp := make([]Point, len(d.Points))
	for i, p := range d.Points {
		pp[i] = p.Clone()
	}
	d.Points = pp
	ff := make([]string, len(d.Features))
	copy(ff, d.Features)
	d.Features = ff
	return d
}
