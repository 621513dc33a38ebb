package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/math/ml"
	"github.com/rs/zerolog/log"
)

const (
	path = "infra/config"
	// KernelsKey is the config key of the kernel defaults.
	KernelsKey = "kernels"
)

// MustLoad loads the config for the given key
func MustLoad(key string, v interface{}) []byte {

	b, err := read(path, key, v)
	if err != nil {
		panic(err.Error())
	}

	log.Info().Str("config", key).Msg("loaded default config")

	return b

}

// Load loads the config for the given key from <dir>/<key>.json.
func Load(dir, key string, v interface{}) error {
	_, err := read(dir, key, v)
	return err
}

func read(dir, key string, v interface{}) ([]byte, error) {
	b, err := ioutil.ReadFile(filepath.Join(dir, fmt.Sprintf("%s.json", key)))
	if err != nil {
		return nil, fmt.Errorf("could not load config for %s: %w", key, err)
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal the config for %s: %w", key, err)
	}
	return b, nil
}

// KNN holds the nearest neighbour defaults.
type KNN struct {
	K          int          `json:"k"`
	Metric     kmath.Metric `json:"metric"`
	Resolution int          `json:"resolution"`
}

// Regression holds the regularized regression defaults and the lambdas of the coefficient path.
type Regression struct {
	ml.RegressionConfig
	Lambdas    []float64 `json:"lambdas"`
	Validation float64   `json:"validation"`
}

// Normal holds the normal sampling defaults.
type Normal struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	N      int     `json:"n"`
	Bins   int     `json:"bins"`
}

// Kernels is the configuration of all kernels.
type Kernels struct {
	Seed       int64           `json:"seed"`
	// HoldOut is the fraction of labelled points held out to score the classifiers.
	HoldOut    float64         `json:"holdout"`
	KNN        KNN             `json:"knn"`
	KMeans     ml.KMeansConfig `json:"kmeans"`
	Tree       ml.TreeConfig   `json:"tree"`
	Regression Regression      `json:"regression"`
	Normal     Normal          `json:"normal"`
}

// DefaultKernels returns the built-in kernel configuration, matching kernels.json.
func DefaultKernels() Kernels {
	regression := ml.NewRegressionConfig(ml.L1, 0)
	return Kernels{
		Seed:    42,
		HoldOut: 0.3,
		KNN: KNN{
			K:          3,
			Metric:     kmath.Euclidean,
			Resolution: ml.DefaultResolution,
		},
		KMeans: ml.NewKMeansConfig(3),
		Tree: ml.TreeConfig{
			MaxDepth:        3,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
		Regression: Regression{
			RegressionConfig: regression,
			Lambdas:          []float64{0, 0.1, 0.5, 1, 2, 5, 10},
			Validation:       0.25,
		},
		Normal: Normal{
			Mean:   0,
			StdDev: 1,
			N:      1000,
			Bins:   20,
		},
	}
}

// Validate checks the values the kernels cannot check on their own.
func (k Kernels) Validate() error {
	if _, err := kmath.ParseMetric(string(k.KNN.Metric)); err != nil {
		return err
	}
	if k.HoldOut <= 0 || k.HoldOut >= 1 {
		return fmt.Errorf("%w: hold-out fraction must be in (0,1): %v", kmath.InvalidInputErr, k.HoldOut)
	}
	if k.KNN.Resolution < 1 {
		return fmt.Errorf("%w: grid resolution must be positive: %d", kmath.InvalidInputErr, k.KNN.Resolution)
	}
	if k.Normal.Bins < 1 {
		return fmt.Errorf("%w: histogram bins must be positive: %d", kmath.InvalidInputErr, k.Normal.Bins)
	}
	return nil
}
