package middleware

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jwtdecode"

// Request outcomes recorded by Claims.
const (
	OutcomeValid     = "valid"
	OutcomeInvalid   = "invalid"
	OutcomeMalformed = "malformed"
	OutcomeMissing   = "missing"
	OutcomeSkipped   = "skipped"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "middleware",
		Name:      "requests_total",
		Help:      "Total number of requests inspected by the claims middleware, labeled by outcome.",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers the middleware collectors with reg.
// Registering twice with the same registerer is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	if err := reg.Register(requestsTotal); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}
	return nil
}
