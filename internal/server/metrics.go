package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "w3pool_http_requests_total",
	},
	[]string{
		"path",
	},
)

var openWebsockets = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "w3pool_open_websockets",
	},
)

var eventsStreamed = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "w3pool_events_streamed_total",
	},
)
