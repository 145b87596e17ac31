package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	consolidationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_consolidation_outcomes_total",
			Help: "Line item create requests by consolidation outcome",
		},
		[]string{"outcome"},
	)

	broadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_broadcasts_total",
			Help: "Room broadcasts by target",
		},
		[]string{"target"},
	)
)
