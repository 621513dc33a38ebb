package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/ml-kernels/internal/buffer"
	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultKMeansIterations caps the assign/update rounds of a k-means run.
	DefaultKMeansIterations = 10
	// DefaultKMeansTolerance is the centroid movement below which a run converges.
	DefaultKMeansTolerance = 0.1
)

// KMeansConfig configures a k-means run.
type KMeansConfig struct {
	K             int     `json:"k"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
}

// NewKMeansConfig creates a config for k clusters with the default limits.
func NewKMeansConfig(k int) KMeansConfig {
	return KMeansConfig{
		K:             k,
		MaxIterations: DefaultKMeansIterations,
		Tolerance:     DefaultKMeansTolerance,
	}
}

// Cluster summarises one cluster of a k-means run.
type Cluster struct {
	Centroid []float64 `json:"centroid"`
	Size     int       `json:"size"`
	WCSS     float64   `json:"wcss"`
}

// Clustering is the outcome of a k-means run.
type Clustering struct {
	Centroids [][]float64 `json:"centroids"`
	// Assignments holds the cluster index of each input point, in input order.
	Assignments []int     `json:"assignments"`
	Clusters    []Cluster `json:"clusters"`
	WCSS        float64   `json:"wcss"`
	Converged   bool      `json:"converged"`
	Iterations  int       `json:"iterations"`
}

// KMeans partitions the points into cfg.K clusters with Lloyd's algorithm.
// The initial centroids are cfg.K distinct points picked with the given random source.
// Reaching the iteration cap without converging is reported through Clustering.Converged.
func KMeans(points [][]float64, cfg KMeansConfig, rng *rand.Rand) (clustering Clustering, err error) {
	defer func() {
		kmath.Observe("kmeans", err)
	}()
	if err := validate(points, cfg); err != nil {
		return Clustering{}, err
	}
	if rng == nil {
		return Clustering{}, fmt.Errorf("%w: no random source", kmath.InvalidInputErr)
	}

	centroids := make([][]float64, cfg.K)
	for i, p := range rng.Perm(len(points))[:cfg.K] {
		centroids[i] = clone(points[p])
	}
	return lloyd(points, centroids, cfg), nil
}

// KMeansFrom runs Lloyd's algorithm from the given initial centroids, e.g. placed by hand.
// cfg.K is ignored in favour of the number of centroids.
func KMeansFrom(points [][]float64, centroids [][]float64, cfg KMeansConfig) (clustering Clustering, err error) {
	defer func() {
		kmath.Observe("kmeans", err)
	}()
	cfg.K = len(centroids)
	if err := validate(points, cfg); err != nil {
		return Clustering{}, err
	}
	start := make([][]float64, len(centroids))
	for i, c := range centroids {
		if len(c) != len(points[0]) {
			return Clustering{}, fmt.Errorf("%w: centroid %d has %d features, points have %d", kmath.InvalidInputErr, i, len(c), len(points[0]))
		}
		start[i] = clone(c)
	}
	return lloyd(points, start, cfg), nil
}

func lloyd(points [][]float64, centroids [][]float64, cfg KMeansConfig) Clustering {
	iterations := 0
	converged := false
	for iterations < cfg.MaxIterations {
		_, next, moved := Step(points, centroids)
		centroids = next
		iterations++
		if moved < cfg.Tolerance {
			converged = true
			break
		}
	}

	assignments := assign(points, centroids)
	clusters := summarize(points, centroids, assignments)
	wcss := 0.0
	for _, c := range clusters {
		wcss += c.WCSS
	}

	log.Debug().
		Int("k", len(centroids)).
		Int("points", len(points)).
		Int("iterations", iterations).
		Bool("converged", converged).
		Float64("wcss", wcss).
		Msg("k-means")

	return Clustering{
		Centroids:   centroids,
		Assignments: assignments,
		Clusters:    clusters,
		WCSS:        wcss,
		Converged:   converged,
		Iterations:  iterations,
	}
}

// Step runs one assign/update round.
// It returns the assignment to the given centroids, the updated centroids
// and the largest distance any centroid moved.
// A centroid without members keeps its position.
// Points and centroids must share the same dimension.
func Step(points [][]float64, centroids [][]float64) ([]int, [][]float64, float64) {
	assignments := assign(points, centroids)

	dim := 0
	if len(centroids) > 0 {
		dim = len(centroids[0])
	}
	means := make([]*buffer.StatsCollector, len(centroids))
	for i := range means {
		means[i] = buffer.NewStatsCollector(dim)
	}
	for i, p := range points {
		means[assignments[i]].Push(p...)
	}

	next := make([][]float64, len(centroids))
	moved := 0.0
	for i, m := range means {
		if m.Size() == 0 {
			next[i] = clone(centroids[i])
			continue
		}
		next[i] = m.Avg()
		d := kmath.MustDistance(centroids[i], next[i], kmath.Euclidean)
		if d > moved {
			moved = d
		}
	}
	return assignments, next, moved
}

// Elbow returns the final WCSS for every k in [1, maxK], as used for the elbow method.
func Elbow(points [][]float64, maxK int, cfg KMeansConfig, rng *rand.Rand) ([]float64, error) {
	if maxK < 1 || maxK > len(points) {
		return nil, fmt.Errorf("%w: max k=%d must be in [1,%d]", kmath.InvalidInputErr, maxK, len(points))
	}
	wcss := make([]float64, maxK)
	for k := 1; k <= maxK; k++ {
		cfg.K = k
		c, err := KMeans(points, cfg, rng)
		if err != nil {
			return nil, fmt.Errorf("could not cluster for k=%d: %w", k, err)
		}
		wcss[k-1] = c.WCSS
	}
	return wcss, nil
}

// assign returns the index of the nearest centroid for each point.
// Equally near centroids resolve to the lowest index.
func assign(points [][]float64, centroids [][]float64) []int {
	assignments := make([]int, len(points))
	for i, p := range points {
		best := math.MaxFloat64
		for j, c := range centroids {
			d := kmath.MustDistance(p, c, kmath.Euclidean)
			if d < best {
				best = d
				assignments[i] = j
			}
		}
	}
	return assignments
}

func summarize(points [][]float64, centroids [][]float64, assignments []int) []Cluster {
	clusters := make([]Cluster, len(centroids))
	for i, c := range centroids {
		clusters[i].Centroid = c
	}
	for i, p := range points {
		c := &clusters[assignments[i]]
		d := kmath.MustDistance(p, c.Centroid, kmath.Euclidean)
		c.Size++
		c.WCSS += d * d
	}
	return clusters
}

func validate(points [][]float64, cfg KMeansConfig) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: no points to cluster", kmath.InvalidInputErr)
	}
	if cfg.K < 1 || cfg.K > len(points) {
		return fmt.Errorf("%w: k=%d must be in [1,%d]", kmath.InvalidInputErr, cfg.K, len(points))
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be positive: %d", kmath.InvalidInputErr, cfg.MaxIterations)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative: %v", kmath.InvalidInputErr, cfg.Tolerance)
	}
	dim := len(points[0])
	if dim == 0 {
		return fmt.Errorf("%w: points have no features", kmath.InvalidInputErr)
	}
	for i, p := range points {
		if len(p) != dim {
			return fmt.Errorf("%w: inconsistent dimensions at point %d: %d vs %d", kmath.InvalidInputErr, i, len(p), dim)
		}
	}
	return nil
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
