package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/drakos74/ml-kernels/infra/config"
	"github.com/drakos74/ml-kernels/internal/math/ml"
	"github.com/drakos74/ml-kernels/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shards map[string]*storage.MockStorage

func (s shards) shard() storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		if _, ok := s[shard]; !ok {
			s[shard] = storage.NewMockStorage()
		}
		return s[shard], nil
	}
}

func TestRunner_Kernels(t *testing.T) {

	type test struct {
		key    storage.Key
		output []string
	}

	tests := map[string]test{
		Correlation: {
			key:    storage.Key{Dataset: "ice-cream", Label: "trend"},
			output: []string{"pearson correlation", "ice-cream", "strong"},
		},
		Normal: {
			key:    storage.Key{Dataset: "normal", Label: "samples"},
			output: []string{"normal samples", "percentile", "histogram"},
		},
		KNN: {
			key:    storage.Key{Dataset: "fruits", Label: "boundary-manhattan"},
			output: []string{"3-nn euclidean on fruits", "euclidean distances between the neighbors", "3-nn hold-out on fruits", "decision boundary minkowski", "a=apple"},
		},
		KMeans: {
			key:    storage.Key{Dataset: "synthetic-clusters", Label: "clustering"},
			output: []string{"k-means k=3", "first points", "elbow"},
		},
		Tree: {
			key:    storage.Key{Dataset: "weather", Label: "tree"},
			output: []string{"decision tree on weather", "=>", "decision tree hold-out on weather", "train=10 test=4"},
		},
		Regression: {
			key:    storage.Key{Dataset: "noisy-sine", Label: "path"},
			output: []string{"l1 coefficient path", "least squares"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			s := make(shards)
			r := newRunner(config.DefaultKernels(), &out, s.shard())
			require.NoError(t, r.run(name))

			require.Len(t, s, 1)
			require.Contains(t, s, name)
			assert.Contains(t, s[name].Elements, tt.key)
			for _, o := range tt.output {
				assert.Contains(t, out.String(), o)
			}
		})
	}
}

func TestRunner_All(t *testing.T) {
	var out bytes.Buffer
	s := make(shards)
	r := newRunner(config.DefaultKernels(), &out, s.shard())
	require.NoError(t, r.run())
	assert.Len(t, s, len(kernels))

	var tree TreeResult
	require.NoError(t, s[Tree].Load(storage.Key{Dataset: "weather", Label: "tree"}, &tree))
	assert.Greater(t, tree.Accuracy, 0.5)
	assert.NotEmpty(t, tree.Rules)

	var reg RegressionResult
	require.NoError(t, s[Regression].Load(storage.Key{Dataset: "noisy-sine", Label: "path"}, &reg))
	assert.Len(t, reg.Path, len(config.DefaultKernels().Regression.Lambdas))
}

func TestRunner_Scores(t *testing.T) {
	var out bytes.Buffer
	s := make(shards)
	r := newRunner(config.DefaultKernels(), &out, s.shard())
	require.NoError(t, r.run(KNN, KMeans, Tree))

	var knn ml.Score
	require.NoError(t, s[KNN].Load(storage.Key{Dataset: "fruits", Label: "holdout"}, &knn))
	assert.Equal(t, 10, knn.Train)
	assert.Equal(t, 5, knn.Test)
	total := 0
	for _, predicted := range knn.Confusion {
		for _, n := range predicted {
			total += n
		}
	}
	assert.Equal(t, knn.Test, total)
	assert.GreaterOrEqual(t, knn.Accuracy, 0.0)
	assert.LessOrEqual(t, knn.Accuracy, 1.0)

	var distances Distances
	require.NoError(t, s[KNN].Load(storage.Key{Dataset: "fruits", Label: "neighbor-distances"}, &distances))
	k := config.DefaultKernels().KNN.K
	require.Len(t, distances.IDs, k)
	require.Len(t, distances.Distances, k)
	for i := range distances.Distances {
		assert.Equal(t, 0.0, distances.Distances[i][i])
		for j := range distances.Distances[i] {
			assert.Equal(t, distances.Distances[i][j], distances.Distances[j][i])
		}
	}

	var clusters ClusterResult
	require.NoError(t, s[KMeans].Load(storage.Key{Dataset: "synthetic-clusters", Label: "clustering"}, &clusters))
	assert.Len(t, clusters.FromFirst.Centroids, config.DefaultKernels().KMeans.K)
	assert.Len(t, clusters.FromFirst.Assignments, len(clusters.Clustering.Assignments))

	var tree TreeResult
	require.NoError(t, s[Tree].Load(storage.Key{Dataset: "weather", Label: "tree"}, &tree))
	assert.Equal(t, 10, tree.HoldOut.Train)
	assert.Equal(t, 4, tree.HoldOut.Test)
}

func TestConfusionTable(t *testing.T) {
	var out bytes.Buffer
	confusion(&out, ml.Score{
		Confusion: map[string]map[string]int{
			"lemon": {"apple": 1},
			"apple": {"apple": 2},
		},
		Train: 7,
		Test:  3,
	})
	s := out.String()
	assert.Contains(t, s, "reference \\ predicted")
	assert.Contains(t, s, "train=7 test=3")
	assert.Less(t, strings.Index(s, "apple"), strings.Index(s, "lemon"))
}

func TestRunner_Failure(t *testing.T) {
	cfg := config.DefaultKernels()
	cfg.KNN.K = 100
	cfg.Regression.LearningRate = 0
	var out bytes.Buffer
	r := newRunner(cfg, &out, storage.VoidShard())
	err := r.run()
	require.Error(t, err)
	assert.Equal(t, "2 kernels failed", err.Error())
}

func TestRunner_Reproducible(t *testing.T) {
	run := func() ml.Clustering {
		s := make(shards)
		r := newRunner(config.DefaultKernels(), &bytes.Buffer{}, s.shard())
		require.NoError(t, r.run(KMeans))
		var c ClusterResult
		require.NoError(t, s[KMeans].Load(storage.Key{Dataset: "synthetic-clusters", Label: "clustering"}, &c))
		return c.Clustering
	}
	assert.Equal(t, run(), run())
}

func TestGrid(t *testing.T) {
	var out bytes.Buffer
	grid(&out, []ml.Cell{
		{Label: "apple"}, {Label: "lemon"},
		{Label: "apple"}, {Label: "apple"},
	}, 2)
	assert.Equal(t, "a a \na l \na=apple l=lemon \n", out.String())
}
