// Package metrics holds small constructors for Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector of this module.
const Namespace = "cloudanchor"

// MustRegisterCounterVec creates a counter vector and registers it with registerer.
func MustRegisterCounterVec(registerer prometheus.Registerer, component, name, help string, labelNames ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	}, labelNames)
	registerer.MustRegister(m)
	return m
}

// MustRegisterGauge creates a gauge and registers it with registerer.
func MustRegisterGauge(registerer prometheus.Registerer, component, name, help string) prometheus.Gauge {
	m := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	})
	registerer.MustRegister(m)
	return m
}

// MustRegisterHistogramVec creates a histogram vector and registers it with registerer.
func MustRegisterHistogramVec(registerer prometheus.Registerer, component, name, help string, buckets []float64, labelNames ...string) *prometheus.HistogramVec {
	m := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labelNames)
	registerer.MustRegister(m)
	return m
}
