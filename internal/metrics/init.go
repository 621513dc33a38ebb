package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve registers the kernel metrics with the default registry and exposes them on the given port.
// It blocks until the server stops.
func Serve(port int) error {
	if err := Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("could not register metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
