package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "shades"

	actionLabel   = "action"
	resourceLabel = "resource"
)

type Metrics struct {
	Reg             *prometheus.Registry
	DispatchTotal   *prometheus.CounterVec
	Connected       prometheus.Gauge
	PendingMessages prometheus.Gauge
	FetchDuration   *prometheus.HistogramVec
	FetchErrors     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Reg: reg,
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
		}, []string{actionLabel}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gateway_connected",
		}),
		PendingMessages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_messages",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}, []string{resourceLabel}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
		}, []string{resourceLabel}),
	}

	reg.MustRegister(m.DispatchTotal)
	reg.MustRegister(m.Connected)
	reg.MustRegister(m.PendingMessages)
	reg.MustRegister(m.FetchDuration)
	reg.MustRegister(m.FetchErrors)

	return m
}
