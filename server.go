package cloudanchor

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/server"
	"github.com/viant/cloudanchor/shortcode"
)

// NewServer creates the cloud anchor MCP server with the given options.
func NewServer(options *Options, logger logr.Logger) (*server.Server, error) {
	if options == nil {
		options = &Options{}
	}
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	service := cloud.NewMemoryService(cloud.Options{
		APIKey:   options.Cloud.APIKey,
		Latency:  options.Cloud.Latency,
		Capacity: options.Cloud.Capacity,
		Logger:   logger.WithName("cloud"),
	})
	if options.Cloud.APIKey == "" {
		logger.Info("no API key configured, every cloud task will fail with ERROR_NOT_AUTHORIZED")
	}
	var store shortcode.Store = shortcode.NewMemoryStore()
	if URL := options.Device.ShortCodeURL; URL != "" {
		store = shortcode.NewFileStore(URL)
	}

	serverOptions := []server.Option{
		server.WithImplementation(schema.Implementation{Name: options.Name, Version: options.Version}),
		server.WithLoggerName(options.LoggerName),
		server.WithLogger(logger.WithName("server")),
		server.WithCloudService(service),
		server.WithShortCodeStore(store),
		server.WithHostTTL(options.Device.HostTTLDays),
		server.WithFrameInterval(options.Device.FrameInterval),
		server.WithMessageLimit(options.Device.MessageLimit),
		server.WithEndpointAddress(fmt.Sprintf(":%v", options.Transport.Port)),
	}
	if options.ProtocolVersion != "" {
		serverOptions = append(serverOptions, server.WithProtocolVersion(options.ProtocolVersion))
	}
	if options.Transport.StreamableURI != "" {
		serverOptions = append(serverOptions, server.WithStreamableURI(options.Transport.StreamableURI))
	}
	if options.Transport.MetricsURI != "" {
		serverOptions = append(serverOptions, server.WithMetricsURI(options.Transport.MetricsURI))
	}
	return server.New(serverOptions...)
}
