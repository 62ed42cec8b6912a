// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes Prometheus counters for authorization decisions.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Decisions counts authorization outcomes by verdict and Location path.
var Decisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "printgate",
		Subsystem: "authorizer",
		Name:      "decisions_total",
		Help:      "Authorization decisions by verdict and location path.",
	},
	[]string{"verdict", "location"},
)

// Registry is the collector registry decisions are recorded against. Callers
// that run their own Prometheus HTTP handler should register this.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(Decisions)
}

// RecordDecision increments the decision counter for verdict/location.
func RecordDecision(verdict, location string) {
	Decisions.WithLabelValues(verdict, location).Inc()
}
