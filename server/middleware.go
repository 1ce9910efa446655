package server

import (
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/mcp-protocol/schema"
)

const protocolVersionHeader = "MCP-Protocol-Version"

// Middleware is a function that takes an http.Handler and returns an http.Handler
type Middleware func(next http.Handler) http.Handler

// ChainMiddlewareHandlers chains multiple middleware handlers together
func ChainMiddlewareHandlers(h http.Handler, mws ...Middleware) http.Handler {
	// apply in reverse so the first middleware is outermost
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// protocolVersionMiddleware rejects requests announcing a protocol version the
// server does not speak and echoes the server version.
func protocolVersionMiddleware(version string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := r.Header.Get(protocolVersionHeader)
			if requested != "" && requested != version && requested != schema.LatestProtocolVersion {
				http.Error(w, "invalid "+protocolVersionHeader, http.StatusBadRequest)
				return
			}
			w.Header().Set(protocolVersionHeader, version)
			next.ServeHTTP(w, r)
		})
	}
}

// requestLoggingMiddleware logs every request at V(1); the writer is passed
// through untouched so streaming keeps working.
func requestLoggingMiddleware(logger logr.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			logger.V(1).Info("http request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(started))
		})
	}
}
