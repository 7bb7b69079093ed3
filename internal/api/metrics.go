package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vend_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vend_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	accountsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vend_accounts_created_total",
		Help: "Accounts created, labeled by role",
	}, []string{"role"})

	coinsDeposited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vend_coins_deposited_total",
		Help: "Total value of coins accepted by the machine",
	})

	purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vend_purchases_total",
		Help: "Purchase attempts, labeled by outcome",
	}, []string{"outcome"})

	amountSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vend_amount_spent_total",
		Help: "Total value spent on settled purchases",
	})
)
