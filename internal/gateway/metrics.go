// ABOUTME: Prometheus counters for backend requests made by the gateway.
// ABOUTME: Outcomes separate success, not_found and failed so empty lists stay distinguishable.
package gateway

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postadmin",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Backend requests by operation and outcome.",
	}, []string{"op", "outcome"})

	if err := reg.Register(requests); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			requests = already.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return &metrics{requests: requests}
}

// observe is safe on a nil receiver so clients without a registry skip metrics.
func (m *metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "failed"
	}
	m.requests.WithLabelValues(op, outcome).Inc()
}
