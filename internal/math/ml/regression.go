package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultLearningRate is the gradient descent step size.
	DefaultLearningRate = 0.01
	// DefaultRegressionIterations is the fixed number of gradient descent steps per fit.
	DefaultRegressionIterations = 1000
)

// Penalty is the regularization applied to the regression coefficients.
type Penalty string

const (
	// NoPenalty fits plain least squares.
	NoPenalty Penalty = "none"
	// L1 is the lasso penalty λ|w|, driving coefficients to exactly zero.
	L1 Penalty = "l1"
	// L2 is the ridge penalty λw², shrinking coefficients towards zero.
	L2 Penalty = "l2"
	// ElasticNet mixes L1 and L2 with weight alpha on the L1 part.
	ElasticNet Penalty = "elasticnet"
)

// ParsePenalty returns the penalty with the given name.
func ParsePenalty(s string) (Penalty, error) {
	switch p := Penalty(s); p {
	case NoPenalty, L1, L2, ElasticNet:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown penalty '%s'", kmath.InvalidInputErr, s)
}

// RegressionConfig configures a regularized regression fit.
type RegressionConfig struct {
	Penalty Penalty `json:"penalty"`
	Lambda  float64 `json:"lambda"`
	// Alpha is the weight of the L1 part of the elastic net.
	Alpha        float64 `json:"alpha"`
	LearningRate float64 `json:"learning_rate"`
	Iterations   int     `json:"iterations"`
	// Degree is the highest power of x used as a feature, 1 fits a line.
	Degree int `json:"degree"`
}

// NewRegressionConfig creates a linear fit config with the default learning rate and iterations.
func NewRegressionConfig(penalty Penalty, lambda float64) RegressionConfig {
	return RegressionConfig{
		Penalty:      penalty,
		Lambda:       lambda,
		Alpha:        0.5,
		LearningRate: DefaultLearningRate,
		Iterations:   DefaultRegressionIterations,
		Degree:       1,
	}
}

// weights returns the strength of the l1 and l2 parts of the penalty.
func (cfg RegressionConfig) weights() (float64, float64) {
	switch cfg.Penalty {
	case L1:
		return cfg.Lambda, 0
	case L2:
		return 0, cfg.Lambda
	case ElasticNet:
		return cfg.Alpha * cfg.Lambda, (1 - cfg.Alpha) * cfg.Lambda
	}
	return 0, 0
}

func (cfg RegressionConfig) validate() error {
	if _, err := ParsePenalty(string(cfg.Penalty)); err != nil {
		return err
	}
	if cfg.Lambda < 0 {
		return fmt.Errorf("%w: lambda must not be negative: %v", kmath.InvalidInputErr, cfg.Lambda)
	}
	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in [0,1]: %v", kmath.InvalidInputErr, cfg.Alpha)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive: %v", kmath.InvalidInputErr, cfg.LearningRate)
	}
	if cfg.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be positive: %d", kmath.InvalidInputErr, cfg.Iterations)
	}
	if cfg.Degree < 1 {
		return fmt.Errorf("%w: degree must be positive: %d", kmath.InvalidInputErr, cfg.Degree)
	}
	return nil
}

// FitRegularized fits y = c[0] + c[1]x + ... + c[d]x^d with batch gradient descent
// under the configured penalty, starting from zero coefficients.
// All coefficients, the bias included, are penalized.
// The L1 part is applied as a shrinkage towards zero that never crosses it,
// so a coefficient at zero stays there unless the data gradient outweighs the penalty.
// It matches the plain subgradient step c -= lr*(grad + λ1*sign(c)) whenever the coefficient
// is non-zero and the step neither reaches nor crosses zero; otherwise the coefficient lands on zero
// or keeps the sign the data gradient gives it.
func FitRegularized(points [][2]float64, cfg RegressionConfig) (coefficients []float64, err error) {
	defer func() {
		kmath.Observe("regression", err)
	}()
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to fit", kmath.InvalidInputErr)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := float64(len(points))
	features := make([][]float64, len(points))
	for i, p := range points {
		features[i] = powers(p[0], cfg.Degree)
	}
	l1, l2 := cfg.weights()
	shrink := cfg.LearningRate * l1

	coefficients = make([]float64, cfg.Degree+1)
	grad := make([]float64, len(coefficients))
	for it := 0; it < cfg.Iterations; it++ {
		for j := range grad {
			grad[j] = 0
		}
		for i, p := range points {
			residual := dot(coefficients, features[i]) - p[1]
			for j, f := range features[i] {
				grad[j] += residual * f
			}
		}
		for j := range coefficients {
			z := coefficients[j] - cfg.LearningRate*(grad[j]/n+2*l2*coefficients[j])
			coefficients[j] = softThreshold(z, shrink)
			if math.IsNaN(coefficients[j]) || math.IsInf(coefficients[j], 0) {
				log.Warn().
					Str("penalty", string(cfg.Penalty)).
					Float64("lambda", cfg.Lambda).
					Float64("learning-rate", cfg.LearningRate).
					Int("iteration", it).
					Msg("regression diverged")
				return nil, fmt.Errorf("%w: coefficient %d after %d iterations", kmath.DivergedErr, j, it+1)
			}
		}
	}
	return coefficients, nil
}

// softThreshold moves z towards zero by t, stopping at zero.
func softThreshold(z, t float64) float64 {
	switch {
	case z > t:
		return z - t
	case z < -t:
		return z + t
	}
	return 0
}

func powers(x float64, degree int) []float64 {
	ff := make([]float64, degree+1)
	p := 1.0
	for j := range ff {
		ff[j] = p
		p *= x
	}
	return ff
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// PathPoint is the fitted coefficient vector for one penalty strength.
type PathPoint struct {
	Lambda       float64   `json:"lambda"`
	Coefficients []float64 `json:"coefficients"`
}

// CoefficientPath fits the model independently, from zero coefficients, for each of the ascending lambdas.
func CoefficientPath(points [][2]float64, cfg RegressionConfig, lambdas []float64) ([]PathPoint, error) {
	if len(lambdas) == 0 {
		return nil, fmt.Errorf("%w: no lambdas", kmath.InvalidInputErr)
	}
	if !sort.SliceIsSorted(lambdas, func(i, j int) bool {
		return lambdas[i] < lambdas[j]
	}) {
		return nil, fmt.Errorf("%w: lambdas must be ascending: %v", kmath.InvalidInputErr, lambdas)
	}
	path := make([]PathPoint, len(lambdas))
	for i, lambda := range lambdas {
		cfg.Lambda = lambda
		c, err := FitRegularized(points, cfg)
		if err != nil {
			return nil, fmt.Errorf("could not fit for lambda=%v: %w", lambda, err)
		}
		path[i] = PathPoint{
			Lambda:       lambda,
			Coefficients: c,
		}
	}
	return path, nil
}

// Evaluation scores a regularized fit on a held-out validation set.
type Evaluation struct {
	Coefficients []float64 `json:"coefficients"`
	TrainR2      float64   `json:"train_r2"`
	ValidationR2 float64   `json:"validation_r2"`
	// Baseline is the unregularized least squares fit of the same degree, if the training set allows one.
	Baseline             []float64 `json:"baseline,omitempty"`
	BaselineTrainR2      float64   `json:"baseline_train_r2"`
	BaselineValidationR2 float64   `json:"baseline_validation_r2"`
	Train                int       `json:"train"`
	Validation           int       `json:"validation"`
}

// Evaluate fits the model on a random training part of the points
// and reports the coefficient of determination on both the training and the validation part.
// The validation part must hold at least 2 points.
func Evaluate(points [][2]float64, cfg RegressionConfig, validationFraction float64, rng *rand.Rand) (Evaluation, error) {
	trainIdx, validIdx, err := TrainTestSplit(len(points), validationFraction, rng)
	if err != nil {
		return Evaluation{}, err
	}
	if len(validIdx) < 2 {
		return Evaluation{}, fmt.Errorf("%w: validation set needs at least 2 points: %d", kmath.InvalidInputErr, len(validIdx))
	}
	train := selectPoints(points, trainIdx)
	valid := selectPoints(points, validIdx)

	c, err := FitRegularized(train, cfg)
	if err != nil {
		return Evaluation{}, fmt.Errorf("could not fit training set: %w", err)
	}
	eval := Evaluation{
		Coefficients: c,
		TrainR2:      RSquared(c, train),
		ValidationR2: RSquared(c, valid),
		Train:        len(train),
		Validation:   len(valid),
	}

	xx, yy := unzip(train)
	baseline, err := kmath.Fit(xx, yy, cfg.Degree)
	if err != nil {
		log.Debug().Err(err).Int("degree", cfg.Degree).Int("train", len(train)).Msg("no least squares baseline")
		return eval, nil
	}
	eval.Baseline = baseline
	eval.BaselineTrainR2 = RSquared(baseline, train)
	eval.BaselineValidationR2 = RSquared(baseline, valid)
	return eval, nil
}

// RSquared is the coefficient of determination of the polynomial with coefficients c on the points.
func RSquared(c []float64, points [][2]float64) float64 {
	estimates := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		estimates[i] = kmath.Polyval(c, p[0])
		values[i] = p[1]
	}
	return stat.RSquaredFrom(estimates, values, nil)
}

func selectPoints(points [][2]float64, idx []int) [][2]float64 {
	pp := make([][2]float64, len(idx))
	for i, j := range idx {
		pp[i] = points[j]
	}
	return pp
}

func unzip(points [][2]float64) ([]float64, []float64) {
	xx := make([]float64, len(points))
	yy := make([]float64, len(points))
	for i, p := range points {
		xx[i] = p[0]
		yy[i] = p[1]
	}
	return xx, yy
}
