package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teacherdash_upstream_requests_total",
		Help: "Requests sent to the teacher API.",
	}, []string{"method", "route", "status"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teacherdash_upstream_request_duration_seconds",
		Help:    "Latency of requests sent to the teacher API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// observe records one call; status 0 means the request never got a reply.
func observe(method, route string, status int, took time.Duration) {
	upstreamRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	upstreamDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
