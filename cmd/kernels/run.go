package main

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/drakos74/ml-kernels/infra/config"
	"github.com/drakos74/ml-kernels/internal/data"
	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/math/ml"
	"github.com/drakos74/ml-kernels/internal/model"
	"github.com/drakos74/ml-kernels/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	Correlation = "correlation"
	Normal      = "normal"
	KNN         = "knn"
	KMeans      = "kmeans"
	Tree        = "tree"
	Regression  = "regression"
)

var ranks = []float64{0.01, 0.05, 0.25, 0.5, 0.75, 0.95, 0.99}

// runner runs the kernels with a shared config and random source.
type runner struct {
	cfg   config.Kernels
	rng   *rand.Rand
	out   io.Writer
	shard storage.Shard
}

type kernel struct {
	name string
	run  func(r *runner) error
}

var kernels = []kernel{
	{name: Correlation, run: (*runner).correlation},
	{name: Normal, run: (*runner).normal},
	{name: KNN, run: (*runner).knn},
	{name: KMeans, run: (*runner).kmeans},
	{name: Tree, run: (*runner).tree},
	{name: Regression, run: (*runner).regression},
}

func newRunner(cfg config.Kernels, out io.Writer, shard storage.Shard) *runner {
	return &runner{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		out:   out,
		shard: shard,
	}
}

// run runs the named kernels in their fixed order, or all of them if none is given.
func (r *runner) run(names ...string) error {
	selected := make(map[string]bool)
	for _, name := range names {
		selected[name] = true
	}
	failed := 0
	for _, k := range kernels {
		if len(selected) > 0 && !selected[k.name] {
			continue
		}
		if err := k.run(r); err != nil {
			log.Error().Err(err).Str("kernel", k.name).Msg("kernel failed")
			failed++
			continue
		}
		log.Debug().Str("kernel", k.name).Msg("kernel done")
	}
	if failed > 0 {
		return fmt.Errorf("%d kernels failed", failed)
	}
	return nil
}

func (r *runner) store(kernel string, dataset string, label string, value interface{}) error {
	s, err := r.shard(kernel)
	if err != nil {
		return fmt.Errorf("could not open storage for %s: %w", kernel, err)
	}
	k := storage.Key{Dataset: dataset, Label: label}
	if err := s.Store(k, value); err != nil {
		return fmt.Errorf("could not store %+v: %w", k, err)
	}
	return nil
}

func (r *runner) load(name string) (model.Dataset, error) {
	return data.Load(name, r.rng)
}

// TrendResult is the stored outcome of the correlation kernel.
type TrendResult struct {
	Correlation kmath.Correlation `json:"correlation"`
	Line        kmath.Line        `json:"line"`
}

func (r *runner) correlation() error {
	rows := make([][]string, 0)
	for _, name := range []string{data.IceCreamKey, data.NoisySineKey} {
		ds, err := r.load(name)
		if err != nil {
			return err
		}
		xy := ds.XY()
		c := kmath.Strength(kmath.Pearson(xy))
		line := kmath.Trend(xy)
		rows = append(rows, []string{
			ds.Name,
			kmath.Format(c.R),
			c.Strength,
			string(c.Direction),
			kmath.Format(line.Slope),
			kmath.Format(line.Intercept),
		})
		if err := r.store(Correlation, ds.Name, "trend", TrendResult{Correlation: c, Line: line}); err != nil {
			return err
		}
	}
	section(r.out, "pearson correlation")
	table(r.out, []string{"dataset", "r", "strength", "direction", "slope", "intercept"}, rows)
	return nil
}

// Percentile is a single rank of a percentile table.
type Percentile struct {
	Rank  float64 `json:"rank"`
	Value float64 `json:"value"`
}

// NormalResult is the stored outcome of the normal sampling kernel.
type NormalResult struct {
	Summary     kmath.Summary `json:"summary"`
	Percentiles []Percentile  `json:"percentiles"`
	Histogram   []kmath.Bin   `json:"histogram"`
	Density     [][2]float64  `json:"density"`
	Sigma       []float64     `json:"sigma"`
}

func (r *runner) normal() error {
	cfg := r.cfg.Normal
	samples, err := kmath.SampleNormal(cfg.Mean, cfg.StdDev, cfg.N, r.rng)
	if err != nil {
		return err
	}
	result := NormalResult{
		Summary: kmath.Summarize(samples),
		Sigma: []float64{
			kmath.WithinSigma(samples, cfg.Mean, cfg.StdDev, 1),
			kmath.WithinSigma(samples, cfg.Mean, cfg.StdDev, 2),
			kmath.WithinSigma(samples, cfg.Mean, cfg.StdDev, 3),
		},
	}
	pp, err := kmath.Percentiles(samples, ranks)
	if err != nil {
		return err
	}
	for rank, v := range pp {
		result.Percentiles = append(result.Percentiles, Percentile{Rank: rank, Value: v})
	}
	sort.Slice(result.Percentiles, func(i, j int) bool {
		return result.Percentiles[i].Rank < result.Percentiles[j].Rank
	})
	result.Histogram, err = kmath.Histogram(samples, cfg.Bins)
	if err != nil {
		return err
	}
	result.Density, err = kmath.DensityCurve(cfg.Mean, cfg.StdDev, cfg.Mean-4*cfg.StdDev, cfg.Mean+4*cfg.StdDev, 60)
	if err != nil {
		return err
	}

	s := result.Summary
	section(r.out, fmt.Sprintf("normal samples N(%s,%s)", kmath.Format(cfg.Mean), kmath.Format(cfg.StdDev)))
	table(r.out, []string{"count", "mean", "stddev", "min", "max", "1σ", "2σ", "3σ"}, [][]string{{
		fmt.Sprintf("%d", s.Count),
		kmath.Format(s.Mean),
		kmath.Format(s.StdDev),
		kmath.Format(s.Min),
		kmath.Format(s.Max),
		kmath.Format(result.Sigma[0]),
		kmath.Format(result.Sigma[1]),
		kmath.Format(result.Sigma[2]),
	}})
	rows := make([][]string, len(result.Percentiles))
	for i, p := range result.Percentiles {
		rows[i] = []string{fmt.Sprintf("p%.0f", p.Rank*100), kmath.Format(p.Value)}
	}
	table(r.out, []string{"percentile", "value"}, rows)
	counts := make([]float64, len(result.Histogram))
	for i, b := range result.Histogram {
		counts[i] = b.Count
	}
	plot(r.out, counts, "histogram")
	density := make([]float64, len(result.Density))
	for i, d := range result.Density {
		density[i] = d[1]
	}
	plot(r.out, density, "density")

	return r.store(Normal, "normal", "samples", result)
}

// Query is a classified k-NN query point.
type Query struct {
	Point     []float64      `json:"point"`
	Label     string         `json:"label"`
	Neighbors []ml.Neighbor  `json:"neighbors"`
	Votes     map[string]int `json:"votes"`
}

var fruitQueries = [][]float64{
	{7.3, 7.2},
	{9.1, 5.9},
	{5.6, 2.2},
	{8.3, 6.8},
	{6.5, 4.5},
}

func (r *runner) knn() error {
	ds, err := r.load(data.FruitsKey)
	if err != nil {
		return err
	}
	cfg := r.cfg.KNN
	metric, err := kmath.ParseMetric(string(cfg.Metric))
	if err != nil {
		return err
	}

	queries := make([]Query, len(fruitQueries))
	rows := make([][]string, len(fruitQueries))
	for i, q := range fruitQueries {
		label, err := ml.Classify(q, ds.Points, cfg.K, metric)
		if err != nil {
			return err
		}
		nn, err := ml.Neighbors(q, ds.Points, cfg.K, metric)
		if err != nil {
			return err
		}
		labels := make([]string, len(nn))
		for j, n := range nn {
			labels[j] = n.Point.Label
		}
		queries[i] = Query{Point: q, Label: label, Neighbors: nn, Votes: ml.Count(labels)}
		rows[i] = []string{
			fmt.Sprintf("(%s,%s)", kmath.Format(q[0]), kmath.Format(q[1])),
			label,
			fmt.Sprintf("%v", labels),
			kmath.Format(nn[len(nn)-1].Distance),
		}
	}
	section(r.out, fmt.Sprintf("%d-nn %s on %s", cfg.K, metric, ds.Name))
	table(r.out, []string{"query", "label", "neighbors", "radius"}, rows)
	if err := r.store(KNN, ds.Name, "queries", queries); err != nil {
		return err
	}

	neighbors := make([]model.Point, len(queries[0].Neighbors))
	for i, n := range queries[0].Neighbors {
		neighbors[i] = n.Point
	}
	m, err := ml.NewDistanceMatrix(neighbors, metric)
	if err != nil {
		return err
	}
	section(r.out, fmt.Sprintf("%s distances between the neighbors of %v", metric, queries[0].Point))
	distances := matrix(r.out, m, neighbors)
	if err := r.store(KNN, ds.Name, "neighbor-distances", distances); err != nil {
		return err
	}

	score, err := ml.HoldOut(ds.Points, r.cfg.HoldOut, r.rng, ml.KNNTrainer(cfg.K, metric))
	if err != nil {
		return err
	}
	section(r.out, fmt.Sprintf("%d-nn hold-out on %s: accuracy=%s", cfg.K, ds.Name, kmath.Format(score.Accuracy)))
	confusion(r.out, score)
	if err := r.store(KNN, ds.Name, "holdout", score); err != nil {
		return err
	}

	for _, m := range kmath.Metrics {
		cells, err := ml.Boundary(ds.Points, cfg.K, m, cfg.Resolution)
		if err != nil {
			return err
		}
		section(r.out, fmt.Sprintf("decision boundary %s", m))
		grid(r.out, cells, cfg.Resolution)
		if err := r.store(KNN, ds.Name, fmt.Sprintf("boundary-%s", m), cells); err != nil {
			return err
		}
	}
	return nil
}

// ClusterResult is the stored outcome of the k-means kernel.
type ClusterResult struct {
	Clustering ml.Clustering `json:"clustering"`
	// FromFirst is the clustering started from the first k points of the dataset.
	FromFirst ml.Clustering `json:"from_first"`
	Elbow     []float64     `json:"elbow"`
}

func (r *runner) kmeans() error {
	ds, err := r.load(data.SyntheticClustersKey)
	if err != nil {
		return err
	}
	points := ds.Matrix()
	c, err := ml.KMeans(points, r.cfg.KMeans, r.rng)
	if err != nil {
		return err
	}
	elbow, err := ml.Elbow(points, 6, r.cfg.KMeans, r.rng)
	if err != nil {
		return err
	}
	// the first points all belong to the same group, a poor start
	first, err := ml.KMeansFrom(points, points[:r.cfg.KMeans.K], r.cfg.KMeans)
	if err != nil {
		return err
	}

	rows := make([][]string, len(c.Clusters))
	for i, cl := range c.Clusters {
		labels := make([]string, 0)
		for j, a := range c.Assignments {
			if a == i {
				labels = append(labels, ds.Points[j].Label)
			}
		}
		majority, n := ml.Vote(labels)
		rows[i] = []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("(%s,%s)", kmath.Format(cl.Centroid[0]), kmath.Format(cl.Centroid[1])),
			fmt.Sprintf("%d", cl.Size),
			kmath.Format(cl.WCSS),
			fmt.Sprintf("%s (%d)", majority, n),
		}
	}
	section(r.out, fmt.Sprintf("k-means k=%d on %s: converged=%v after %d iterations, wcss=%s",
		r.cfg.KMeans.K, ds.Name, c.Converged, c.Iterations, kmath.Format(c.WCSS)))
	table(r.out, []string{"cluster", "centroid", "size", "wcss", "group"}, rows)
	table(r.out, []string{"start", "converged", "iterations", "wcss"}, [][]string{
		{"random points", fmt.Sprintf("%v", c.Converged), fmt.Sprintf("%d", c.Iterations), kmath.Format(c.WCSS)},
		{"first points", fmt.Sprintf("%v", first.Converged), fmt.Sprintf("%d", first.Iterations), kmath.Format(first.WCSS)},
	})
	plot(r.out, elbow, "elbow: wcss for k=1..6")

	return r.store(KMeans, ds.Name, "clustering", ClusterResult{Clustering: c, FromFirst: first, Elbow: elbow})
}

// TreeResult is the stored outcome of the decision tree kernel.
type TreeResult struct {
	Root     *ml.Node `json:"root"`
	Rules    []string `json:"rules"`
	Accuracy float64  `json:"accuracy"`
	HoldOut  ml.Score `json:"holdout"`
}

func (r *runner) tree() error {
	ds, err := r.load(data.WeatherKey)
	if err != nil {
		return err
	}
	root, err := ml.BuildTree(ds.Points, ds.Features, r.cfg.Tree)
	if err != nil {
		return err
	}
	acc, err := ml.Accuracy(root, ds.Points)
	if err != nil {
		return err
	}
	score, err := ml.HoldOut(ds.Points, r.cfg.HoldOut, r.rng, ml.TreeTrainer(ds.Features, r.cfg.Tree))
	if err != nil {
		return err
	}
	result := TreeResult{Root: root, Rules: root.Rules(), Accuracy: acc, HoldOut: score}

	rows := make([][]string, len(result.Rules))
	for i, rule := range result.Rules {
		rows[i] = []string{rule}
	}
	section(r.out, fmt.Sprintf("decision tree on %s: height=%d leaves=%d accuracy=%s",
		ds.Name, root.Height(), root.Leaves(), kmath.Format(acc)))
	table(r.out, []string{"rule"}, rows)
	section(r.out, fmt.Sprintf("decision tree hold-out on %s: accuracy=%s", ds.Name, kmath.Format(score.Accuracy)))
	confusion(r.out, score)

	return r.store(Tree, ds.Name, "tree", result)
}

// RegressionResult is the stored outcome of the regularized regression kernel.
type RegressionResult struct {
	Path       []ml.PathPoint `json:"path"`
	Evaluation ml.Evaluation  `json:"evaluation"`
}

func (r *runner) regression() error {
	ds, err := r.load(data.NoisySineKey)
	if err != nil {
		return err
	}
	cfg := r.cfg.Regression
	xy := ds.XY()
	path, err := ml.CoefficientPath(xy, cfg.RegressionConfig, cfg.Lambdas)
	if err != nil {
		return err
	}
	eval, err := ml.Evaluate(xy, cfg.RegressionConfig, cfg.Validation, r.rng)
	if err != nil {
		return err
	}

	header := []string{"lambda"}
	for j := 0; j <= cfg.Degree; j++ {
		header = append(header, fmt.Sprintf("c%d", j))
	}
	rows := make([][]string, len(path))
	for i, p := range path {
		row := []string{kmath.Format(p.Lambda)}
		for _, c := range p.Coefficients {
			row = append(row, kmath.Format(c))
		}
		rows[i] = row
	}
	section(r.out, fmt.Sprintf("%s coefficient path on %s", cfg.Penalty, ds.Name))
	table(r.out, header, rows)
	table(r.out, []string{"fit", "train r2", "validation r2"}, [][]string{
		{fmt.Sprintf("%s λ=%s", cfg.Penalty, kmath.Format(cfg.Lambda)), kmath.Format(eval.TrainR2), kmath.Format(eval.ValidationR2)},
		{"least squares", kmath.Format(eval.BaselineTrainR2), kmath.Format(eval.BaselineValidationR2)},
	})

	return r.store(Regression, ds.Name, "path", RegressionResult{Path: path, Evaluation: eval})
}
