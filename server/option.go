package server

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/jsonrpc/transport/server/stdio"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/shortcode"
)

// Option is a function that configures the server.
type Option func(s *Server) error

// WithImplementation sets the server implementation.
func WithImplementation(implementation schema.Implementation) Option {
	return func(s *Server) error {
		s.info = implementation
		return nil
	}
}

// WithInstructions sets instructions returned on initialize.
func WithInstructions(instructions string) Option {
	return func(s *Server) error {
		s.instructions = &instructions
		return nil
	}
}

// WithProtocolVersion sets the protocol version.
func WithProtocolVersion(version string) Option {
	return func(s *Server) error {
		s.protocolVersion = version
		return nil
	}
}

// WithLoggerName sets the logger name used in client notifications.
func WithLoggerName(name string) Option {
	return func(s *Server) error {
		s.loggerName = name
		return nil
	}
}

// WithCloudService sets the cloud anchor service shared by all devices.
func WithCloudService(service cloud.Service) Option {
	return func(s *Server) error {
		s.service = service
		return nil
	}
}

// WithShortCodeStore sets the short code store shared by all devices.
func WithShortCodeStore(store shortcode.Store) Option {
	return func(s *Server) error {
		s.codes = store
		return nil
	}
}

// WithFrameInterval sets the device frame interval; a negative interval disables the frame loop.
func WithFrameInterval(interval time.Duration) Option {
	return func(s *Server) error {
		s.frameInterval = interval
		return nil
	}
}

// WithHostTTL sets the number of days hosted anchors are kept.
func WithHostTTL(days int) Option {
	return func(s *Server) error {
		s.hostTTLDays = days
		return nil
	}
}

// WithMessageLimit sets how many messages a device keeps.
func WithMessageLimit(limit int) Option {
	return func(s *Server) error {
		s.messageLimit = limit
		return nil
	}
}

// WithLogger sets the server logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithRegistry sets the registry metrics are registered with.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) error {
		s.registry = registry
		return nil
	}
}

// WithEndpointAddress sets the default HTTP listen address.
func WithEndpointAddress(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithStreamableURI sets the streamable HTTP endpoint.
func WithStreamableURI(uri string) Option {
	return func(s *Server) error {
		s.streamableURI = uri
		return nil
	}
}

// WithMetricsURI sets the Prometheus endpoint.
func WithMetricsURI(uri string) Option {
	return func(s *Server) error {
		s.metricsURI = uri
		return nil
	}
}

// WithStdioOptions sets stdio transport options.
func WithStdioOptions(options ...stdio.Option) Option {
	return func(s *Server) error {
		s.stdioOptions = append(s.stdioOptions, options...)
		return nil
	}
}
