package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/math/ml"
	"github.com/drakos74/ml-kernels/internal/model"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
)

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s\n", title)
}

func table(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.AppendBulk(rows)
	t.Render()
}

func plot(w io.Writer, series []float64, caption string) {
	if len(series) == 0 {
		return
	}
	fmt.Fprintln(w, asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Caption(caption)))
}

// grid draws the boundary cells with the first letter of their label, highest y on top.
func grid(w io.Writer, cells []ml.Cell, resolution int) {
	legend := make(map[string]string)
	var b strings.Builder
	for j := resolution - 1; j >= 0; j-- {
		for i := 0; i < resolution; i++ {
			idx := j*resolution + i
			if idx >= len(cells) {
				continue
			}
			label := cells[idx].Label
			symbol := "?"
			if label != "" {
				symbol = label[:1]
			}
			legend[symbol] = label
			b.WriteString(symbol)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	symbols := make([]string, 0, len(legend))
	for s := range legend {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		fmt.Fprintf(&b, "%s=%s ", s, legend[s])
	}
	fmt.Fprintln(w, b.String())
}

// Distances is the exported form of a distance matrix.
type Distances struct {
	IDs       []string    `json:"ids"`
	Points    []string    `json:"points"`
	Distances [][]float64 `json:"distances"`
}

// matrix prints the distance matrix with the points as headers, in matrix order.
func matrix(w io.Writer, m *model.DistanceMatrix, points []model.Point) Distances {
	d := Distances{
		IDs:       m.IDs(),
		Points:    make([]string, m.Size()),
		Distances: make([][]float64, m.Size()),
	}
	header := make([]string, m.Size()+1)
	rows := make([][]string, m.Size())
	for i := 0; i < m.Size(); i++ {
		d.Points[i] = points[i].String()
		header[i+1] = d.Points[i]
		d.Distances[i] = make([]float64, m.Size())
		rows[i] = make([]string, m.Size()+1)
		rows[i][0] = d.Points[i]
		for j := 0; j < m.Size(); j++ {
			d.Distances[i][j] = m.At(i, j)
			rows[i][j+1] = kmath.Format(m.At(i, j))
		}
	}
	table(w, header, rows)
	return d
}

// confusion prints the confusion matrix with the reference labels as rows and the predicted ones as columns.
func confusion(w io.Writer, score ml.Score) {
	labels := make(map[string]struct{})
	for ref, predicted := range score.Confusion {
		labels[ref] = struct{}{}
		for p := range predicted {
			labels[p] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(labels))
	for l := range labels {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	header := append([]string{"reference \\ predicted"}, sorted...)
	rows := make([][]string, 0, len(score.Confusion))
	for _, ref := range sorted {
		predicted, ok := score.Confusion[ref]
		if !ok {
			continue
		}
		row := []string{ref}
		for _, p := range sorted {
			row = append(row, fmt.Sprintf("%d", predicted[p]))
		}
		rows = append(rows, row)
	}
	table(w, header, rows)
	fmt.Fprintf(w, "train=%d test=%d\n", score.Train, score.Test)
}
