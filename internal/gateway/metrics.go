package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess     = "success"
	outcomeRejected    = "rejected"
	outcomeUnavailable = "unavailable"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_gateway_requests_total",
		Help: "Payment gateway calls by operation and outcome",
	}, []string{"operation", "outcome"})

	gatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travel_gateway_request_duration_seconds",
		Help:    "Payment gateway call latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})
)
