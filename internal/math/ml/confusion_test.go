package ml

import (
	"testing"

	"github.com/drakos74/ml-kernels/internal/data"
	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusion(t *testing.T) {
	c, err := Confusion([]string{"a", "a", "b", "b"}, []string{"a", "b", "b", "b"})
	require.NoError(t, err)
	assert.Equal(t, evaluation.ConfusionMatrix{
		"a": {"a": 1, "b": 1},
		"b": {"b": 2},
	}, c)
	assert.Equal(t, 0.75, evaluation.GetAccuracy(c))

	_, err = Confusion([]string{"a"}, []string{"a", "b"})
	assert.ErrorIs(t, err, kmath.InvalidInputErr)
	_, err = Confusion(nil, nil)
	assert.ErrorIs(t, err, kmath.InvalidInputErr)
}

func TestHoldOut(t *testing.T) {

	type test struct {
		points   []model.Point
		trainer  Trainer
		fraction float64
		train    int
		test     int
	}

	weather := data.Weather()

	tests := map[string]test{
		"knn-fruits": {
			points:   data.Fruits().Points,
			trainer:  KNNTrainer(1, kmath.Euclidean),
			fraction: 1.0 / 3.0,
			train:    10,
			test:     5,
		},
		"tree-weather": {
			points:   weather.Points,
			trainer:  TreeTrainer(weather.Features, TreeConfig{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1}),
			fraction: 0.25,
			train:    10,
			test:     4,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			score, err := HoldOut(tt.points, tt.fraction, newRand(5), tt.trainer)
			require.NoError(t, err)
			assert.Equal(t, tt.train, score.Train)
			assert.Equal(t, tt.test, score.Test)

			total, correct := 0, 0
			for ref, row := range score.Confusion {
				for pred, n := range row {
					total += n
					if ref == pred {
						correct += n
					}
				}
			}
			assert.Equal(t, tt.test, total)
			assert.Equal(t, float64(correct)/float64(total), score.Accuracy)
			assert.NotEmpty(t, score.Summary())

			again, err := HoldOut(tt.points, tt.fraction, newRand(5), tt.trainer)
			require.NoError(t, err)
			assert.Equal(t, score, again)
		})
	}
}

func TestHoldOut_TrainerErrors(t *testing.T) {
	points := data.Fruits().Points

	_, err := HoldOut(points, 0.5, newRand(1), KNNTrainer(100, kmath.Euclidean))
	assert.ErrorIs(t, err, kmath.InvalidInputErr)

	_, err = HoldOut(points, 0.5, newRand(1), TreeTrainer(nil, TreeConfig{MaxDepth: -1, MinSamplesSplit: 1, MinSamplesLeaf: 1}))
	assert.ErrorIs(t, err, kmath.InvalidInputErr)

	_, err = HoldOut(points, 0, newRand(1), KNNTrainer(1, kmath.Euclidean))
	assert.ErrorIs(t, err, kmath.InvalidInputErr)
}
