package math

import (
	"errors"

	"github.com/drakos74/ml-kernels/internal/metrics"
)

var (
	// InvalidInputErr marks arguments a kernel cannot work with e.g. k larger than the population.
	InvalidInputErr = errors.New("invalid input")
	// DivergedErr marks an iterative fit that produced non-finite values.
	DivergedErr = errors.New("diverged")
)

// Observe records the outcome of a kernel run.
func Observe(kernel string, err error) {
	outcome := metrics.OK
	switch {
	case err == nil:
	case errors.Is(err, DivergedErr):
		outcome = metrics.Diverged
	default:
		outcome = metrics.Invalid
	}
	metrics.Observer.Increment(kernel, outcome)
}
