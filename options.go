package cloudanchor

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/cloudanchor/cloud"
	"github.com/viant/cloudanchor/codelab"
	"github.com/viant/cloudanchor/session"
)

const (
	TransportStdio      = "stdio"
	TransportStreamable = "streamable"

	defaultPort = 5000
)

// Options defines options for configuring the cloud anchor server.
type Options struct {
	ConfigURL       string `yaml:"-" json:"-" short:"c" long:"config" description:"YAML config URL, flags override its values"`
	Name            string `yaml:"name" json:"name" long:"name" description:"server name"`
	Version         string `yaml:"version" json:"version" long:"version" description:"server version"`
	ProtocolVersion string `yaml:"protocol" json:"protocol" short:"p" long:"protocol" description:"mcp protocol"`
	LoggerName      string `yaml:"loggerName" json:"loggerName" long:"logger-name" description:"logger name used in client notifications"`
	LogLevel        string `yaml:"logLevel" json:"logLevel" short:"l" long:"log-level" description:"server log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`

	Transport TransportOptions `yaml:"transport" json:"transport" group:"transport"`
	Cloud     CloudOptions     `yaml:"cloud" json:"cloud" group:"cloud"`
	Device    DeviceOptions    `yaml:"device" json:"device" group:"device"`
}

// TransportOptions selects how clients connect.
type TransportOptions struct {
	Type          string `yaml:"type" json:"type" short:"T" long:"transport-type" description:"mcp transport type" choice:"stdio" choice:"streamable"`
	Port          int    `yaml:"port" json:"port" short:"P" long:"port" description:"http port"`
	StreamableURI string `yaml:"streamableURI" json:"streamableURI" long:"streamable-uri" description:"streamable http endpoint"`
	MetricsURI    string `yaml:"metricsURI" json:"metricsURI" long:"metrics-uri" description:"prometheus endpoint"`
}

// CloudOptions configures the in-process cloud anchor service.
type CloudOptions struct {
	APIKey   string        `yaml:"apiKey" json:"apiKey" long:"api-key" env:"CLOUD_ANCHOR_API_KEY" description:"cloud anchor API key"`
	Latency  time.Duration `yaml:"latency" json:"latency" long:"latency" description:"time a host or resolve task stays in progress"`
	Capacity int           `yaml:"capacity" json:"capacity" long:"capacity" description:"maximum number of hosted anchors"`
}

// DeviceOptions configures every connected device.
type DeviceOptions struct {
	HostTTLDays   int           `yaml:"hostTTLDays" json:"hostTTLDays" long:"ttl" description:"days hosted anchors are kept"`
	FrameInterval time.Duration `yaml:"frameInterval" json:"frameInterval" long:"frame-interval" description:"device frame interval"`
	MessageLimit  int           `yaml:"messageLimit" json:"messageLimit" long:"message-limit" description:"messages kept per device"`
	ShortCodeURL  string        `yaml:"shortCodeURL" json:"shortCodeURL" long:"shortcode-url" description:"short code store URL, in memory when empty"`
}

// Init sets defaults
func (o *Options) Init() {
	if o.Name == "" {
		o.Name = "cloudanchor"
	}
	if o.Version == "" {
		o.Version = "0.1"
	}
	if o.LoggerName == "" {
		o.LoggerName = "cloudanchor"
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	if o.Transport.Type == "" {
		o.Transport.Type = TransportStdio
	}
	if o.Transport.Port == 0 {
		o.Transport.Port = defaultPort
	}
	if o.Cloud.Capacity == 0 {
		o.Cloud.Capacity = cloud.DefaultCapacity
	}
	if o.Device.HostTTLDays == 0 {
		o.Device.HostTTLDays = codelab.DefaultHostTTLDays
	}
	if o.Device.FrameInterval == 0 {
		o.Device.FrameInterval = session.DefaultFrameInterval
	}
}

// Validate checks values Init cannot repair.
func (o *Options) Validate() error {
	if _, err := cloud.TTL(o.Device.HostTTLDays); err != nil {
		return fmt.Errorf("invalid device ttl: %w", err)
	}
	switch o.Transport.Type {
	case TransportStdio, TransportStreamable:
	default:
		return fmt.Errorf("unsupported transport: %v", o.Transport.Type)
	}
	return nil
}

// LoadOptions loads options from a YAML document at URL.
func LoadOptions(ctx context.Context, URL string) (*Options, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load options %v: %w", URL, err)
	}
	ret := &Options{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("invalid options %v: %w", URL, err)
	}
	ret.ConfigURL = URL
	return ret, nil
}
