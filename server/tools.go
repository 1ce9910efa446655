package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/cloudanchor/anchor"
	"github.com/viant/cloudanchor/codelab"
	"github.com/viant/cloudanchor/internal/conv"
)

const (
	ToolPlaceAnchor      = "place_anchor"
	ToolResolveShortCode = "resolve_short_code"
	ToolClearAnchor      = "clear_anchor"
	ToolAnchorStatus     = "anchor_status"
)

type (
	// PlaceAnchorInput is the pose of a new anchor; a zero rotation means identity.
	PlaceAnchorInput struct {
		X  float32 `json:"x,omitempty" description:"x position in meters"`
		Y  float32 `json:"y,omitempty" description:"y position in meters"`
		Z  float32 `json:"z,omitempty" description:"z position in meters"`
		QX float32 `json:"qx,omitempty" description:"rotation quaternion x"`
		QY float32 `json:"qy,omitempty" description:"rotation quaternion y"`
		QZ float32 `json:"qz,omitempty" description:"rotation quaternion z"`
		QW float32 `json:"qw,omitempty" description:"rotation quaternion w"`
	}

	// ResolveShortCodeInput names the short code to resolve.
	ResolveShortCodeInput struct {
		ShortCode int `json:"shortCode" description:"short code shared by the hosting device"`
	}

	noInput struct{}

	// DeviceStatus is the result of anchor_status.
	DeviceStatus struct {
		Device string `json:"device"`
		codelab.Status
		Frames   uint64            `json:"frames"`
		Messages []codelab.Message `json:"messages,omitempty"`
	}

	tool struct {
		name        string
		description string
		input       any
		call        func(ctx context.Context, h *Handler, arguments map[string]interface{}) (*schema.CallToolResult, *jsonrpc.Error)
	}
)

// Pose converts the input to an anchor pose.
func (i *PlaceAnchorInput) Pose() anchor.Pose {
	ret := anchor.Pose{X: i.X, Y: i.Y, Z: i.Z, QX: i.QX, QY: i.QY, QZ: i.QZ, QW: i.QW}
	if ret.QX == 0 && ret.QY == 0 && ret.QZ == 0 && ret.QW == 0 {
		ret.QW = 1
	}
	return ret
}

var tools = []*tool{
	{
		name:        ToolPlaceAnchor,
		description: "Place an anchor at the given pose and host it; the short code is reported once hosting finished.",
		input:       &PlaceAnchorInput{},
		call:        placeAnchor,
	},
	{
		name:        ToolResolveShortCode,
		description: "Resolve the anchor hosted under a short code.",
		input:       &ResolveShortCodeInput{},
		call:        resolveShortCode,
	},
	{
		name:        ToolClearAnchor,
		description: "Remove the current anchor and ignore results of running operations.",
		input:       &noInput{},
		call:        clearAnchor,
	},
	{
		name:        ToolAnchorStatus,
		description: "Report the current anchor, pending operations and recent messages.",
		input:       &noInput{},
		call:        anchorStatus,
	},
}

func lookupTool(name string) *tool {
	for _, candidate := range tools {
		if candidate.name == name {
			return candidate
		}
	}
	return nil
}

// ListTools handles the tools/list method
func (h *Handler) ListTools(_ context.Context, _ *jsonrpc.Request) (*schema.ListToolsResult, *jsonrpc.Error) {
	result := &schema.ListToolsResult{}
	for _, item := range tools {
		inputSchema, err := inputSchema(item.input)
		if err != nil {
			return nil, jsonrpc.NewInternalError(fmt.Sprintf("failed to create schema: %v", err), nil)
		}
		description := item.description
		result.Tools = append(result.Tools, schema.Tool{
			Name:        item.name,
			Description: &description,
			InputSchema: inputSchema,
		})
	}
	return result, nil
}

// CallTool handles the tools/call method
func (h *Handler) CallTool(ctx context.Context, request *jsonrpc.Request) (*schema.CallToolResult, *jsonrpc.Error) {
	callToolRequest := &schema.CallToolRequest{Method: request.Method}
	if err := json.Unmarshal(request.Params, &callToolRequest.Params); err != nil {
		return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
	}
	selected := lookupTool(callToolRequest.Params.Name)
	if selected == nil {
		return nil, jsonrpc.NewMethodNotFound(fmt.Sprintf("tool %v not found", callToolRequest.Params.Name), nil)
	}
	return selected.call(ctx, h, callToolRequest.Params.Arguments)
}

func placeAnchor(ctx context.Context, h *Handler, arguments map[string]interface{}) (*schema.CallToolResult, *jsonrpc.Error) {
	input := &PlaceAnchorInput{}
	if len(arguments) > 0 {
		data, err := json.Marshal(arguments)
		if err == nil {
			err = json.Unmarshal(data, input)
		}
		if err != nil {
			return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("invalid pose: %v", err), nil)
		}
	}
	placed, err := h.device.Controller.PlaceAnchor(ctx, input.Pose())
	if err != nil {
		return toolError(err), nil
	}
	return structuredResult("Now hosting anchor...", placed.Snapshot())
}

func resolveShortCode(ctx context.Context, h *Handler, arguments map[string]interface{}) (*schema.CallToolResult, *jsonrpc.Error) {
	code, ok := conv.AsInt(arguments["shortCode"])
	if !ok {
		return nil, jsonrpc.NewInvalidParamsError("shortCode must be an integer", nil)
	}
	if err := h.device.Controller.ResolveShortCode(ctx, code); err != nil {
		return toolError(err), nil
	}
	return textResult(fmt.Sprintf("Resolving anchor with short code %d...", code)), nil
}

func clearAnchor(_ context.Context, h *Handler, _ map[string]interface{}) (*schema.CallToolResult, *jsonrpc.Error) {
	h.device.Controller.Clear()
	return textResult("Anchor cleared."), nil
}

func anchorStatus(_ context.Context, h *Handler, _ map[string]interface{}) (*schema.CallToolResult, *jsonrpc.Error) {
	status := h.device.Status()
	data, err := json.Marshal(status)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return structuredResult(string(data), status)
}

func textResult(text string) *schema.CallToolResult {
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: text},
		},
	}
}

func toolError(err error) *schema.CallToolResult {
	isError := true
	ret := textResult(err.Error())
	ret.IsError = &isError
	return ret
}

func structuredResult(text string, value any) (*schema.CallToolResult, *jsonrpc.Error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	structured := map[string]interface{}{}
	if err = json.Unmarshal(data, &structured); err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	ret := textResult(text)
	ret.StructuredContent = structured
	return ret, nil
}
