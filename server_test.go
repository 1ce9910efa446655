package cloudanchor

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	options := &Options{}
	options.Cloud.APIKey = "key"
	options.Device.ShortCodeURL = filepath.Join(t.TempDir(), "codes.json")
	srv, err := NewServer(options, logr.Discard())
	require.NoError(t, err)
	defer srv.Close()
	assert.Equal(t, 0, srv.Devices())
	assert.NotNil(t, srv.Registry())

	options.Device.HostTTLDays = 999
	_, err = NewServer(options, logr.Discard())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(buffer, "info")
	logger.V(1).Info("hidden")
	logger.Info("shown", "device", "d1")
	assert.NotContains(t, buffer.String(), "hidden")
	assert.Contains(t, buffer.String(), `"device":"d1"`)

	buffer.Reset()
	NewLogger(buffer, "debug").V(1).Info("verbose")
	assert.Contains(t, buffer.String(), "verbose")
}

func TestRun_Help(t *testing.T) {
	assert.NoError(t, Run([]string{"--help"}))
}
