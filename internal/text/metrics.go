package text

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	callDraft = "draft"
	callReact = "react"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanlife_text_requests_total",
			Help: "Text generation calls by call shape and outcome.",
		},
		[]string{"call", "outcome"},
	)

	requestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanlife_text_request_seconds",
			Help:    "Latency of text generation calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"call"},
	)
)
