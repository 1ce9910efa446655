package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/cloudanchor/internal/metrics"
)

const (
	component = "manager"

	// OperationLabel is the label holding the cloud operation (host, resolve).
	OperationLabel = "operation"
	// StateLabel is the label holding the terminal cloud state.
	StateLabel = "state"
)

// Metrics are the collectors updated by a Manager.
type Metrics struct {
	// Completed counts delivered operations [operation, state].
	Completed *prometheus.CounterVec
	// Pending tracks the number of operations awaiting delivery.
	Pending prometheus.Gauge
	// Duration observes the time from request to delivery [operation].
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the manager collectors and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		Completed: metrics.MustRegisterCounterVec(registerer, component, "operations_completed_total",
			"Number of cloud anchor operations delivered to their listener.", OperationLabel, StateLabel),
		Pending: metrics.MustRegisterGauge(registerer, component, "operations_pending",
			"Number of cloud anchor operations awaiting completion."),
		Duration: metrics.MustRegisterHistogramVec(registerer, component, "operation_duration_seconds",
			"Time between issuing a cloud anchor operation and delivering its result.",
			[]float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}, OperationLabel),
	}
}
