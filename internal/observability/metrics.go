// Package observability exposes the service's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassificationsTotal counts produced classifications by provenance
	// (model, model_heuristic, rule_based, fallback:*).
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_classifications_total",
		Help: "Classifications produced, labeled by provenance source.",
	}, []string{"source"})

	// ModelRequestsTotal counts outbound generative-endpoint attempts by
	// outcome (ok, http status class, network_error).
	ModelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_model_requests_total",
		Help: "Outbound model endpoint attempts by outcome.",
	}, []string{"outcome"})

	// AssignmentsTotal counts assignment results by path
	// (primary-filter, nearest-city-fallback, cross-border-fallback,
	// unassigned).
	AssignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_assignments_total",
		Help: "Ticket assignments by selection path.",
	}, []string{"path"})
)
