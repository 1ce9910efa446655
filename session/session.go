// Package session drives the per-frame update of cloud anchor state: every
// frame advances the cloud service and then delivers finished operations.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/manager"
)

// DefaultFrameInterval paces Run at 30 frames per second.
const DefaultFrameInterval = time.Second / 30

// Session owns the frame loop of one device.
type Session struct {
	service cloud.Service
	manager *manager.Manager
	logger  logr.Logger
	frames  atomic.Uint64
}

// Update runs a single frame and returns the number of delivered operations.
func (s *Session) Update() int {
	s.service.Update()
	delivered := s.manager.OnUpdate()
	s.frames.Add(1)
	return delivered
}

// Frames returns the number of frames run so far.
func (s *Session) Frames() uint64 {
	return s.frames.Load()
}

// Run calls Update every interval until ctx is done.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	s.logger.V(1).Info("frame loop started", "interval", interval)
	defer func() {
		s.logger.V(1).Info("frame loop stopped", "frames", s.Frames())
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.Update()
		}
	}
}

// New creates a Session.
func New(service cloud.Service, manager *manager.Manager, logger logr.Logger) *Session {
	return &Session{service: service, manager: manager, logger: logger}
}
