package bank

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refillsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_bank_refills_total",
		Help: "Bank refills by category and source of stock.",
	}, []string{"category", "source"})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_bank_fetch_retries_total",
		Help: "Transport retries while fetching question batches.",
	})
)
