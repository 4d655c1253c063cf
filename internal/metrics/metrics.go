package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreMetrics covers the ordering core: cart mutations, checkout outcomes,
// and gateway sessions.
type StoreMetrics struct {
	CartOps         *prometheus.CounterVec
	Checkouts       *prometheus.CounterVec
	GatewaySessions prometheus.Counter
	Requests        *prometheus.CounterVec
}

func New(namespace string) *StoreMetrics {
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})

	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout submissions by outcome.",
	}, []string{"outcome"})

	gatewaySessions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_sessions_total",
		Help:      "Charge sessions opened at the external gateway.",
	})

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status.",
	}, []string{"method", "status"})

	prometheus.MustRegister(cartOps, checkouts, gatewaySessions, requests)

	return &StoreMetrics{
		CartOps:         cartOps,
		Checkouts:       checkouts,
		GatewaySessions: gatewaySessions,
		Requests:        requests,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
