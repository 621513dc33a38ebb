package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Point is a small feature vector, optionally tagged with a label and a display color.
type Point struct {
	ID       string    `json:"id"`
	Features []float64 `json:"features"`
	Label    string    `json:"label,omitempty"`
	Color    string    `json:"color,omitempty"`
}

// NewPoint creates a new 2-D point.
func NewPoint(x, y float64) Point {
	return Point{
		ID:       uuid.New().String(),
		Features: []float64{x, y},
	}
}

// NewLabeledPoint creates a new 2-D point with the given label.
func NewLabeledPoint(x, y float64, label string) Point {
	p := NewPoint(x, y)
	p.Label = label
	return p
}

// WithColor sets the display color of the point.
func (p Point) WithColor(color string) Point {
	p.Color = color
	return p
}

// WithID sets the identifier of the point.
func (p Point) WithID(id string) Point {
	p.ID = id
	return p
}

// X returns the first feature.
func (p Point) X() float64 {
	return p.at(0)
}

// Y returns the second feature.
func (p Point) Y() float64 {
	return p.at(1)
}

func (p Point) at(i int) float64 {
	if i >= len(p.Features) {
		return 0
	}
	return p.Features[i]
}

// Dim returns the number of features.
func (p Point) Dim() int {
	return len(p.Features)
}

// Clone returns a deep copy of the point.
func (p Point) Clone() Point {
	ff := make([]float64, len(p.Features))
	copy(ff, p.Features)
	p.Features = ff
	return p
}

func (p Point) String() string {
	ss := make([]string, len(p.Features))
	for i, f := range p.Features {
		ss[i] = fmt.Sprintf("%.2f", f)
	}
	if p.Label == "" {
		return fmt.Sprintf("(%s)", strings.Join(ss, ","))
	}
	return fmt.Sprintf("(%s|%s)", strings.Join(ss, ","), p.Label)
}
