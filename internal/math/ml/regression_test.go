package ml

import (
	"math"
	"testing"

	"github.com/drakos74/ml-kernels/internal/data"
	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// y = 2x + 1 on [0,1]
func straight() [][2]float64 {
	pp := make([][2]float64, 21)
	for i := range pp {
		x := float64(i) / 20
		pp[i] = [2]float64{x, 2*x + 1}
	}
	return pp
}

func zeros(c []float64) int {
	z := 0
	for _, v := range c {
		if v == 0 {
			z++
		}
	}
	return z
}

func TestFitRegularized(t *testing.T) {

	type test struct {
		cfg    RegressionConfig
		coeffs []float64
		delta  float64
	}

	tests := map[string]test{
		"none-default": {
			cfg:    NewRegressionConfig(NoPenalty, 0),
			coeffs: []float64{1.2963, 1.4502},
			delta:  1e-4,
		},
		"none-converged": {
			cfg: RegressionConfig{
				Penalty:      NoPenalty,
				LearningRate: 0.1,
				Iterations:   5000,
				Degree:       1,
			},
			coeffs: []float64{1, 2},
			delta:  1e-9,
		},
		"l1-strong": {
			cfg:    NewRegressionConfig(L1, 10),
			coeffs: []float64{0, 0},
		},
		"l1-mild": {
			cfg:    NewRegressionConfig(L1, 0.5),
			coeffs: []float64{1.4939, 0},
			delta:  1e-4,
		},
		"l2-strong": {
			cfg:    NewRegressionConfig(L2, 10),
			coeffs: []float64{0.0939, 0.0559},
			delta:  1e-4,
		},
		"l2-zero-lambda": {
			cfg:    NewRegressionConfig(L2, 0),
			coeffs: []float64{1.2963, 1.4502},
			delta:  1e-4,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := FitRegularized(straight(), tt.cfg)
			require.NoError(t, err)
			require.Equal(t, len(tt.coeffs), len(c))
			for i := range c {
				if tt.coeffs[i] == 0 {
					assert.Equal(t, 0.0, c[i], "coefficient %d", i)
				} else {
					assert.InDelta(t, tt.coeffs[i], c[i], tt.delta, "coefficient %d", i)
				}
			}
		})
	}
}

func TestFitRegularized_MatchesLeastSquares(t *testing.T) {
	pp := straight()
	xx, yy := unzip(pp)
	ols, err := kmath.Fit(xx, yy, 1)
	require.NoError(t, err)

	c, err := FitRegularized(pp, RegressionConfig{
		Penalty:      NoPenalty,
		LearningRate: 0.1,
		Iterations:   5000,
		Degree:       1,
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, ols, c, 1e-6)
}

func TestFitRegularized_ElasticNetLimits(t *testing.T) {
	for _, lambda := range []float64{0.1, 0.5, 2} {
		l1, err := FitRegularized(straight(), NewRegressionConfig(L1, lambda))
		require.NoError(t, err)
		l2, err := FitRegularized(straight(), NewRegressionConfig(L2, lambda))
		require.NoError(t, err)

		cfg := NewRegressionConfig(ElasticNet, lambda)
		cfg.Alpha = 1
		en, err := FitRegularized(straight(), cfg)
		require.NoError(t, err)
		assert.Equal(t, l1, en)

		cfg.Alpha = 0
		en, err = FitRegularized(straight(), cfg)
		require.NoError(t, err)
		assert.Equal(t, l2, en)
	}
}

func TestFitRegularized_L1MatchesSubgradientAwayFromZero(t *testing.T) {
	points := straight()
	cfg := RegressionConfig{Penalty: L1, Lambda: 0.01, LearningRate: 0.1, Iterations: 1, Degree: 1}
	first, err := FitRegularized(points, cfg)
	require.NoError(t, err)

	grad := make([]float64, len(first))
	for _, p := range points {
		residual := first[0] + first[1]*p[0] - p[1]
		grad[0] += residual
		grad[1] += residual * p[0]
	}
	expected := make([]float64, len(first))
	for j, c := range first {
		require.NotEqual(t, 0.0, c)
		expected[j] = c - cfg.LearningRate*(grad[j]/float64(len(points))+cfg.Lambda*math.Copysign(1, c))
		require.Equal(t, math.Signbit(c), math.Signbit(expected[j]))
	}

	cfg.Iterations = 2
	second, err := FitRegularized(points, cfg)
	require.NoError(t, err)
	assert.InDeltaSlice(t, expected, second, 1e-12)
}

func TestFitRegularized_Diverges(t *testing.T) {
	// sales reach 200, far beyond what the default learning rate can handle
	c, err := FitRegularized(data.IceCream().XY(), NewRegressionConfig(NoPenalty, 0))
	assert.ErrorIs(t, err, kmath.DivergedErr)
	assert.Nil(t, c)
}

func TestFitRegularized_Degree(t *testing.T) {
	// y = x² - x
	pp := make([][2]float64, 11)
	for i := range pp {
		x := float64(i)/5 - 1
		pp[i] = [2]float64{x, x*x - x}
	}
	c, err := FitRegularized(pp, RegressionConfig{
		Penalty:      NoPenalty,
		LearningRate: 0.1,
		Iterations:   20000,
		Degree:       2,
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, -1, 1}, c, 1e-6)
}

func TestFitRegularized_InvalidInput(t *testing.T) {

	valid := NewRegressionConfig(ElasticNet, 1)

	type test struct {
		points [][2]float64
		cfg    func(cfg RegressionConfig) RegressionConfig
	}

	tests := map[string]test{
		"no-points": {
			cfg: func(cfg RegressionConfig) RegressionConfig {
				return cfg
			},
		},
		"unknown-penalty": {
			points: straight(),
			cfg: func(cfg RegressionConfig) RegressionConfig {
				cfg.Penalty = "l3"
				return cfg
			},
		},
		"negative-lambda": {
			points: straight(),
			cfg: func(cfg RegressionConfig) RegressionConfig {
				cfg.Lambda = -1
				return cfg
			},
		},
		"alpha-above-one": {
			points: straight(),
			cfg: func(cfg RegressionConfig) RegressionConfig {
				cfg.Alpha = 1.5
				return cfg
			},
		},
		"zero-learning-rate": {
			points: straight(),
			cfg: func(cfg RegressionConfig) RegressionConfig {
				cfg.LearningRate = 0
				return cfg
			},
		},
		"zero-iterations": {
			points: straight(),
			cfg: func(cfg RegressionConfig) RegressionConfig {
				cfg.Iterations = 0
				return cfg
			},
		},
		"zero-degree": {
			points: straight(),
			cfg: func(cfg RegressionConfig) RegressionConfig {
				cfg.Degree = 0
				return cfg
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FitRegularized(tt.points, tt.cfg(valid))
			assert.ErrorIs(t, err, kmath.InvalidInputErr)
		})
	}
}

func TestCoefficientPath(t *testing.T) {
	lambdas := []float64{0, 0.1, 0.5, 1, 2, 10}

	t.Run("l1", func(t *testing.T) {
		path, err := CoefficientPath(straight(), NewRegressionConfig(L1, 0), lambdas)
		require.NoError(t, err)
		require.Equal(t, len(lambdas), len(path))
		for i := 1; i < len(path); i++ {
			assert.GreaterOrEqual(t, zeros(path[i].Coefficients), zeros(path[i-1].Coefficients))
			assert.LessOrEqual(t, math.Abs(path[i].Coefficients[1]), math.Abs(path[i-1].Coefficients[1]))
		}
		assert.Equal(t, 0, zeros(path[0].Coefficients))
		assert.Equal(t, 2, zeros(path[len(path)-1].Coefficients))
	})

	t.Run("l2", func(t *testing.T) {
		path, err := CoefficientPath(straight(), NewRegressionConfig(L2, 0), lambdas)
		require.NoError(t, err)
		for i := 1; i < len(path); i++ {
			for j := range path[i].Coefficients {
				assert.Less(t, math.Abs(path[i].Coefficients[j]), math.Abs(path[i-1].Coefficients[j]))
				assert.NotEqual(t, 0.0, path[i].Coefficients[j])
			}
		}
	})

	t.Run("independent-fits", func(t *testing.T) {
		cfg := NewRegressionConfig(ElasticNet, 0)
		path, err := CoefficientPath(straight(), cfg, lambdas)
		require.NoError(t, err)
		for _, p := range path {
			cfg.Lambda = p.Lambda
			c, err := FitRegularized(straight(), cfg)
			require.NoError(t, err)
			assert.Equal(t, c, p.Coefficients)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := CoefficientPath(straight(), NewRegressionConfig(L1, 0), []float64{1, 0.5})
		assert.ErrorIs(t, err, kmath.InvalidInputErr)
		_, err = CoefficientPath(straight(), NewRegressionConfig(L1, 0), nil)
		assert.ErrorIs(t, err, kmath.InvalidInputErr)
		_, err = CoefficientPath(straight(), NewRegressionConfig(L1, 0), []float64{-1, 1})
		assert.ErrorIs(t, err, kmath.InvalidInputErr)
	})
}

func TestEvaluate(t *testing.T) {
	pp := straight()
	for i := range pp {
		// deterministic wiggle around the line
		pp[i][1] += 0.05 * math.Sin(7*float64(i))
	}
	cfg := RegressionConfig{
		Penalty:      NoPenalty,
		LearningRate: 0.1,
		Iterations:   5000,
		Degree:       1,
	}
	eval, err := Evaluate(pp, cfg, 0.25, newRand(3))
	require.NoError(t, err)
	assert.Equal(t, 5, eval.Validation)
	assert.Equal(t, 16, eval.Train)
	assert.Greater(t, eval.TrainR2, 0.95)
	assert.Greater(t, eval.ValidationR2, 0.7)
	require.Len(t, eval.Baseline, 2)
	assert.InDeltaSlice(t, eval.Baseline, eval.Coefficients, 1e-3)
	assert.InDelta(t, eval.BaselineTrainR2, eval.TrainR2, 1e-3)

	_, err = Evaluate(pp, cfg, 0.05, newRand(3))
	assert.ErrorIs(t, err, kmath.InvalidInputErr)
}

func TestParsePenalty(t *testing.T) {
	for _, s := range []string{"none", "l1", "l2", "elasticnet"} {
		p, err := ParsePenalty(s)
		require.NoError(t, err)
		assert.Equal(t, Penalty(s), p)
	}
	_, err := ParsePenalty("ridge")
	assert.ErrorIs(t, err, kmath.InvalidInputErr)
}
