package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/codelab"
	"github.com/viant/cloudanchor/internal/collection"
	"github.com/viant/cloudanchor/internal/metrics"
	"github.com/viant/cloudanchor/manager"
	"github.com/viant/cloudanchor/session"
	"github.com/viant/cloudanchor/shortcode"
)

// Server represents the MCP protocol handler of the cloud anchor devices.
type Server struct {
	info            schema.Implementation
	instructions    *string
	protocolVersion string
	loggerName      string

	service       cloud.Service
	codes         shortcode.Store
	frameInterval time.Duration
	hostTTLDays   int
	messageLimit  int
	logger        logr.Logger

	ctx    context.Context
	cancel context.CancelFunc

	registry         *prometheus.Registry
	operationMetrics *manager.Metrics
	connected        prometheus.Gauge
	devices          *collection.SyncMap[string, *Device]

	stdioServer
	httpServer
}

// NewHandler creates a new handler instance; every call connects a new device.
// The device lives until its session is removed or the server is closed, not
// for the duration of ctx, which may belong to the handshake request.
func (s *Server) NewHandler(ctx context.Context, transport transport.Transport) transport.Handler {
	return s.newHandler(ctx, transport)
}

func (s *Server) newHandler(_ context.Context, transport transport.Transport) *Handler {
	ret := &Handler{
		server:         s,
		Notifier:       transport,
		activeContexts: collection.NewSyncMap[int, context.CancelFunc](),
	}
	ret.Logger = NewLogger(s.loggerName, schema.Info, transport)
	ret.device = s.connect(ret.Logger)
	return ret
}

// Device returns a connected device.
func (s *Server) Device(id string) (*Device, bool) {
	return s.devices.Get(id)
}

// Devices returns the number of connected devices.
func (s *Server) Devices() int {
	return s.devices.Len()
}

// Registry returns the registry holding the server metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Close disconnects every device.
func (s *Server) Close() {
	s.cancel()
	s.devices.Range(func(_ string, device *Device) bool {
		s.disconnect(device)
		return true
	})
}

// New creates a new Server instance
func New(options ...Option) (*Server, error) {
	s := &Server{
		info: schema.Implementation{
			Name:    "cloudanchor",
			Version: "0.1",
		},
		loggerName:      "cloudanchor",
		protocolVersion: schema.LatestProtocolVersion,
		frameInterval:   session.DefaultFrameInterval,
		hostTTLDays:     codelab.DefaultHostTTLDays,
		logger:          logr.Discard(),
		devices:         collection.NewSyncMap[string, *Device](),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	if s.service == nil {
		return nil, errors.New("no cloud service specified")
	}
	if s.hostTTLDays < cloud.MinTTLDays || s.hostTTLDays > cloud.MaxTTLDays {
		return nil, fmt.Errorf("host ttl %d days: %w", s.hostTTLDays, cloud.ErrInvalidTTL)
	}
	if s.codes == nil {
		s.codes = shortcode.NewMemoryStore()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.operationMetrics = manager.NewMetrics(s.registry)
	s.connected = metrics.MustRegisterGauge(s.registry, "server", "devices_connected",
		"Number of connected devices.")
	return s, nil
}
