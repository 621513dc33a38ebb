package ml

import (
	"fmt"
	"math/rand"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/evaluation"
)

// Score is the held-out performance of a classifier.
type Score struct {
	// Confusion counts reference labels (rows) against predicted labels (columns).
	Confusion evaluation.ConfusionMatrix `json:"confusion"`
	Accuracy  float64                    `json:"accuracy"`
	Train     int                        `json:"train"`
	Test      int                        `json:"test"`
}

// Summary renders the per class precision, recall and f1 of the score.
func (s Score) Summary() string {
	return evaluation.GetSummary(s.Confusion)
}

// Confusion tallies the reference labels against the predicted ones.
func Confusion(reference, predicted []string) (evaluation.ConfusionMatrix, error) {
	if len(reference) == 0 || len(reference) != len(predicted) {
		return nil, fmt.Errorf("%w: %d reference vs %d predicted labels", kmath.InvalidInputErr, len(reference), len(predicted))
	}
	c := make(evaluation.ConfusionMatrix)
	for i, ref := range reference {
		if _, ok := c[ref]; !ok {
			c[ref] = make(map[string]int)
		}
		c[ref][predicted[i]]++
	}
	return c, nil
}

// Predictor labels a single point.
type Predictor func(p model.Point) (string, error)

// Trainer fits a predictor on the training points.
type Trainer func(training []model.Point) (Predictor, error)

// KNNTrainer predicts by majority vote of the k nearest training points.
func KNNTrainer(k int, metric kmath.Metric) Trainer {
	return func(training []model.Point) (Predictor, error) {
		return func(p model.Point) (string, error) {
			return classify(p.Features, training, k, metric)
		}, nil
	}
}

// TreeTrainer grows a decision tree on the training points.
func TreeTrainer(features []string, cfg TreeConfig) Trainer {
	return func(training []model.Point) (Predictor, error) {
		root, err := BuildTree(training, features, cfg)
		if err != nil {
			return nil, err
		}
		return func(p model.Point) (string, error) {
			return Predict(root, p)
		}, nil
	}
}

// HoldOut trains on a random part of the points and scores the predictions
// on the held-out testFraction of them.
func HoldOut(points []model.Point, testFraction float64, rng *rand.Rand, trainer Trainer) (Score, error) {
	trainIdx, testIdx, err := TrainTestSplit(len(points), testFraction, rng)
	if err != nil {
		return Score{}, err
	}
	train := pick(points, trainIdx)
	test := pick(points, testIdx)

	predict, err := trainer(train)
	if err != nil {
		return Score{}, fmt.Errorf("could not train on %d points: %w", len(train), err)
	}

	reference := make([]string, len(test))
	predicted := make([]string, len(test))
	for i, p := range test {
		label, err := predict(p)
		if err != nil {
			return Score{}, fmt.Errorf("could not classify test point %d: %w", i, err)
		}
		reference[i] = p.Label
		predicted[i] = label
	}
	c, err := Confusion(reference, predicted)
	if err != nil {
		return Score{}, err
	}
	score := Score{
		Confusion: c,
		Accuracy:  evaluation.GetAccuracy(c),
		Train:     len(train),
		Test:      len(test),
	}
	log.Debug().
		Int("train", score.Train).
		Int("test", score.Test).
		Float64("accuracy", score.Accuracy).
		Msg("hold-out score")
	return score, nil
}
