package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OK marks a successful kernel run.
	OK = "ok"
	// Invalid marks a run rejected for its input.
	Invalid = "invalid"
	// Diverged marks a run that produced non-finite values.
	Diverged = "diverged"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

type Metrics struct {
	mutex      *sync.RWMutex
	registered bool
	prometheus Prometheus
}

// Register registers the kernel metrics with the given registerer.
// Registering more than once is a no-op.
func Register(reg prometheus.Registerer) error {
	Observer.mutex.Lock()
	defer Observer.mutex.Unlock()
	if Observer.registered {
		return nil
	}
	if err := reg.Register(Observer.prometheus.Runs); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
	}
	Observer.registered = true
	return nil
}

func (m *Metrics) Increment(labels ...string) {
	m.prometheus.Runs.WithLabelValues(labels...).Inc()
}

// Runs returns the counter for the given kernel and outcome.
func (m *Metrics) Runs(kernel, outcome string) prometheus.Counter {
	return m.prometheus.Runs.WithLabelValues(kernel, outcome)
}
