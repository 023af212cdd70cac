// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turf",
		Name:      "store_fallbacks_total",
		Help:      "Store operations served by the local fallback after a remote failure.",
	}, []string{"op"})

	SlotConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turf",
		Name:      "slot_conflicts_total",
		Help:      "Slot conflicts detected, by the check that caught them.",
	}, []string{"check"})

	WorkflowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turf",
		Name:      "workflow_outcomes_total",
		Help:      "Booking workflows by final outcome.",
	}, []string{"outcome"})

	EnrichmentFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "turf",
		Name:      "enrichment_fallbacks_total",
		Help:      "Generated texts replaced by their static fallback.",
	})
)
