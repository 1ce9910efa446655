package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/cloudanchor/internal/collection"
)

// Handler represents the handler of one connection
type Handler struct {
	transport.Notifier
	*Logger
	server           *Server
	device           *Device
	activeContexts   *collection.SyncMap[int, context.CancelFunc]
	clientInitialize *schema.InitializeRequestParams
	initialized      atomic.Bool
}

// Device returns the device behind the connection.
func (h *Handler) Device() *Device {
	return h.device
}

// Initialized reports whether the client sent notifications/initialized.
func (h *Handler) Initialized() bool {
	return h.initialized.Load()
}

// Serve handles incoming JSON-RPC requests
func (h *Handler) Serve(parent context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	if jsonrpc.Version != request.Jsonrpc {
		response.Error = jsonrpc.NewInvalidRequest("invalid JSON-RPC version", nil)
		return
	}
	id, _ := jsonrpc.AsRequestIntId(request.Id)
	ctx, cancel := context.WithCancel(parent)
	h.activeContexts.Put(int(id), cancel)
	defer h.CancelOperation(int(id))

	switch request.Method {
	case schema.MethodInitialize:
		result, err := h.Initialize(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodPing:
		result, err := h.Ping(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodToolsList:
		result, err := h.ListTools(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodToolsCall:
		result, err := h.CallTool(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodLoggingSetLevel:
		result, err := h.SetLevel(ctx, request)
		h.setResponse(response, result, err)
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method: %v not found", request.Method), request.Params)
	}
}

func (h *Handler) setResponse(response *jsonrpc.Response, result interface{}, rpcError *jsonrpc.Error) {
	if rpcError != nil {
		response.Error = rpcError
		return
	}
	var err error
	response.Result, err = json.Marshal(result)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), []byte{})
	}
}

// OnNotification handles incoming JSON-RPC notifications
func (h *Handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	switch notification.Method {
	case schema.MethodNotificationCancel:
		if err := h.Cancel(ctx, notification); err != nil {
			h.server.logger.V(1).Info("invalid cancel notification", "device", h.device.ID, "error", err)
		}
	case schema.MethodNotificationInitialized:
		h.initialized.Store(true)
	}
}

// CancelOperation cancels the context of the in-flight request id.
func (h *Handler) CancelOperation(id int) {
	if cancel, ok := h.activeContexts.Take(id); ok {
		cancel()
	}
}
