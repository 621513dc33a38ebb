package ml

import (
	"fmt"
	"math"
	"math/rand"

	kmath "github.com/drakos74/ml-kernels/internal/math"
)

// TrainTestSplit shuffles the indexes [0,n) and holds out the given fraction of them for testing.
// Both sides are guaranteed to hold at least one index.
func TrainTestSplit(n int, testFraction float64, rng *rand.Rand) ([]int, []int, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test fraction must be in (0,1): %v", kmath.InvalidInputErr, testFraction)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 samples to split: %d", kmath.InvalidInputErr, n)
	}
	if rng == nil {
		return nil, nil, fmt.Errorf("%w: no random source", kmath.InvalidInputErr)
	}
	test := int(math.Round(float64(n) * testFraction))
	if test < 1 {
		test = 1
	}
	if test > n-1 {
		test = n - 1
	}
	perm := rng.Perm(n)
	return perm[test:], perm[:test], nil
}
