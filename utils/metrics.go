package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DraftWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairhub_draft_writes_total",
		Help: "Booking draft writes by result.",
	}, []string{"result"})

	DraftLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairhub_draft_loads_total",
		Help: "Booking draft loads by outcome (found, absent, mismatch, expired, corrupt).",
	}, []string{"outcome"})

	AgentRankingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairhub_agent_rankings_total",
		Help: "Agent ranking invocations by outcome (ok, skipped, error, stale).",
	}, []string{"outcome"})

	RankedAgentsCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "repairhub_ranked_agents",
		Help:    "Number of eligible agents returned per ranking.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	BookingsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairhub_bookings_submitted_total",
		Help: "Booking submissions by result (created, invalid, failed).",
	}, []string{"result"})

	WizardTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairhub_wizard_transitions_total",
		Help: "Wizard step transitions by direction and result.",
	}, []string{"direction", "result"})
)
