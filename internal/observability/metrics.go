// Package observability exposes Prometheus metrics for LCD traffic.
package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clicker/internal/lcdclient"
)

const (
	metricsNamespace = "clicker"
	metricsSubsystem = "lcd"
)

var (
	lcdRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_total",
			Help:      "Total number of LCD requests by route and status",
		},
		[]string{"network", "method", "route", "status"},
	)

	lcdRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "LCD request latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"network", "method", "route"},
	)

	lcdRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_in_flight",
			Help:      "LCD requests currently in flight",
		},
		[]string{"network"},
	)

	lcdRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "retries_total",
			Help:      "LCD request attempts beyond the first",
		},
		[]string{"network", "route"},
	)
)

// routePrefixes collapse addresses and hashes out of label values.
var routePrefixes = []struct {
	prefix string
	route  string
}{
	{"/cosmwasm/wasm/v1/contract/", "/cosmwasm/wasm/v1/contract/{address}/smart"},
	{"/cosmos/auth/v1beta1/accounts/", "/cosmos/auth/v1beta1/accounts/{address}"},
	{"/cosmos/tx/v1beta1/txs/", "/cosmos/tx/v1beta1/txs/{hash}"},
}

// Route returns the low-cardinality route label for an LCD endpoint.
func Route(endpoint string) string {
	for _, p := range routePrefixes {
		if strings.HasPrefix(endpoint, p.prefix) {
			return p.route
		}
	}
	return endpoint
}

// NewPrometheusHooks returns LCD client hooks that record request metrics.
func NewPrometheusHooks() lcdclient.Hooks {
	return lcdclient.Hooks{
		OnRequestStart: func(ctx context.Context, info lcdclient.RequestInfo) {
			lcdRequestsInFlight.WithLabelValues(info.Network).Inc()
			if info.Attempt > 0 {
				lcdRetriesTotal.WithLabelValues(info.Network, Route(info.Endpoint)).Inc()
			}
		},
		OnRequestEnd: func(ctx context.Context, info lcdclient.RequestInfo, statusCode int, elapsed time.Duration, err error) {
			route := Route(info.Endpoint)
			status := "error"
			if statusCode > 0 {
				status = strconv.Itoa(statusCode)
			}
			lcdRequestsInFlight.WithLabelValues(info.Network).Dec()
			lcdRequestsTotal.WithLabelValues(info.Network, info.Method, route, status).Inc()
			lcdRequestDuration.WithLabelValues(info.Network, info.Method, route).Observe(elapsed.Seconds())
		},
	}
}
