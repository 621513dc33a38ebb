package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Runs *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{Runs: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kernels",
			Name:      "runs_total",
			Help:      "Number of kernel invocations by outcome.",
		}, []string{"kernel", "outcome"}),
	}
}
