package manager

import (
	"time"

	"github.com/go-logr/logr"
)

// Option configures a Manager.
type Option func(m *Manager)

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics enables metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithClock sets the clock used to measure operation durations.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}
