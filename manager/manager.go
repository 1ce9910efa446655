// Package manager adds a callback-like mechanism on top of the poll-based
// cloud anchor service: host and resolve calls take a listener that is invoked
// once, from OnUpdate, when the operation finished.
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/viant/cloudanchor/anchor"
	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/pending"
)

// Listener is invoked with the anchor handle once its cloud task finished.
// Inspect CloudState on the handle to tell success from failure.
type Listener func(handle *anchor.Anchor)

// Manager tracks anchors with in-flight cloud tasks.
type Manager struct {
	service cloud.Service
	pending *pending.Registry[*anchor.Anchor]
	logger  logr.Logger
	metrics *Metrics
	clock   func() time.Time
}

// HostCloudAnchor hosts source for ttlDays and returns the in-progress handle
// of the task; listener is invoked with that handle when the result is available.
func (m *Manager) HostCloudAnchor(ctx context.Context, source *anchor.Anchor, ttlDays int, listener Listener) (*anchor.Anchor, error) {
	handle, err := m.service.HostCloudAnchor(ctx, source, ttlDays)
	if err != nil {
		return nil, fmt.Errorf("failed to host anchor: %w", err)
	}
	m.track(cloud.OperationHost, handle, listener)
	return handle, nil
}

// ResolveCloudAnchor resolves cloudAnchorID and returns the in-progress handle;
// listener is invoked with that handle when the result is available.
func (m *Manager) ResolveCloudAnchor(ctx context.Context, cloudAnchorID string, listener Listener) (*anchor.Anchor, error) {
	handle, err := m.service.ResolveCloudAnchor(ctx, cloudAnchorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve anchor %v: %w", cloudAnchorID, err)
	}
	m.track(cloud.OperationResolve, handle, listener)
	return handle, nil
}

// OnUpdate delivers finished operations. It should be called after every
// service update, i.e. once per frame.
func (m *Manager) OnUpdate() int {
	return m.pending.Poll()
}

// ClearListeners forgets all outstanding operations so that their listeners
// are never called. The operations themselves are not cancelled.
func (m *Manager) ClearListeners() {
	discarded := m.pending.DiscardAll()
	if discarded > 0 {
		m.logger.Info("cleared pending listeners", "count", discarded)
	}
	m.addPending(-discarded)
}

// Pending returns the number of operations awaiting delivery.
func (m *Manager) Pending() int {
	return m.pending.Len()
}

func (m *Manager) track(operation cloud.Operation, handle *anchor.Anchor, listener Listener) {
	started := m.clock()
	m.logger.V(1).Info("tracking cloud operation", "operation", operation, "handle", handle.ID())
	if !m.pending.Contains(handle) {
		m.addPending(1)
	}
	m.pending.Register(handle, func(done *anchor.Anchor) {
		// the entry is out of the registry once its listener runs
		m.addPending(-1)
		state := done.CloudState()
		m.logger.Info("cloud operation finished", "operation", operation, "handle", done.ID(), "state", state)
		if m.metrics != nil {
			m.metrics.Completed.WithLabelValues(string(operation), state.String()).Inc()
			m.metrics.Duration.WithLabelValues(string(operation)).Observe(m.clock().Sub(started).Seconds())
		}
		if listener != nil {
			listener(done)
		}
	})
}

// addPending moves the shared gauge by delta; several managers may report to the same Metrics.
func (m *Manager) addPending(delta int) {
	if m.metrics != nil && delta != 0 {
		m.metrics.Pending.Add(float64(delta))
	}
}

// New creates a Manager for service.
func New(service cloud.Service, options ...Option) *Manager {
	ret := &Manager{
		service: service,
		pending: pending.New[*anchor.Anchor](),
		logger:  logr.Discard(),
		clock:   time.Now,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}
