package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	routeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smschat",
		Name:      "inbound_route_outcomes_total",
		Help:      "Inbound SMS messages by routing outcome.",
	}, []string{"outcome"})

	fanoutSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smschat",
		Name:      "fanout_sends_total",
		Help:      "Outbound group SMS sends by result.",
	}, []string{"result"})

	poolAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smschat",
		Name:      "pool_assignments_total",
		Help:      "Pool claim attempts by result.",
	}, []string{"result"})
)
