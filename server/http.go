package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/jsonrpc/transport/server/http/streamable"
)

const (
	defaultAddr          = "127.0.0.1:5000"
	defaultStreamableURI = "/mcp"
	defaultMetricsURI    = "/metrics"
	devicesURI           = "/devices"
)

type httpServer struct {
	addr          string
	streamableURI string
	metricsURI    string
}

// HTTP creates an HTTP server exposing the streamable MCP endpoint, the
// metrics endpoint and a read-only view of connected devices.
func (s *Server) HTTP(_ context.Context, addr string) *http.Server {
	if addr == "" {
		addr = s.addr
	}
	if addr == "" {
		addr = defaultAddr
	}
	if s.streamableURI == "" {
		s.streamableURI = defaultStreamableURI
	}
	if s.metricsURI == "" {
		s.metricsURI = defaultMetricsURI
	}
	streaming := streamable.New(s.NewHandler,
		streamable.WithURI(s.streamableURI),
		streamable.WithSessionStore(newSessionStore(s)))

	router := mux.NewRouter()
	router.Handle(s.streamableURI, ChainMiddlewareHandlers(streaming,
		requestLoggingMiddleware(s.logger),
		protocolVersionMiddleware(s.protocolVersion),
	))
	router.Handle(s.metricsURI, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc(devicesURI, s.listDevices).Methods(http.MethodGet)
	router.HandleFunc(devicesURI+"/{id}", s.getDevice).Methods(http.MethodGet)
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) listDevices(w http.ResponseWriter, _ *http.Request) {
	result := []DeviceStatus{}
	s.devices.Range(func(_ string, device *Device) bool {
		result = append(result, device.Status())
		return true
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Device < result[j].Device })
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	device, ok := s.devices.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "device not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, device.Status())
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
