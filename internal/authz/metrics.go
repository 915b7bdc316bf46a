package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "privchat",
	Subsystem: "authz",
	Name:      "decisions_total",
	Help:      "Access control decisions by resource, operation and outcome.",
}, []string{"resource", "operation", "outcome"})

func observe(res Resource, op Operation, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	decisions.WithLabelValues(string(res), string(op), outcome).Inc()
}
