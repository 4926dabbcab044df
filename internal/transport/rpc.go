package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// protocolVersion is the MCP revision the durable dispatcher speaks.
const protocolVersion = "2024-11-05"

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// dispatcher answers JSON-RPC requests by method name against the tool
// registry. It backs both the POST endpoints and the websocket channel.
type dispatcher struct {
	tools *julesmcp.Server
	log   zerolog.Logger
}

func result(id json.RawMessage, v any) *rpcResponse {
	return &rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Result: v}
}

func failure(id json.RawMessage, code int, msg string) *rpcResponse {
	return &rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Error: &rpcError{Code: code, Message: msg}}
}

// handle decodes body and dispatches it. A nil response means nothing is
// sent back; status is the HTTP code for the POST endpoints.
func (d *dispatcher) handle(ctx context.Context, body []byte) (*rpcResponse, int) {
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		d.log.Warn().Err(err).Msg("malformed JSON-RPC body")
		return failure(nil, mcp.INTERNAL_ERROR, "Internal error: "+err.Error()), http.StatusInternalServerError
	}
	return d.dispatch(ctx, &req)
}

func (d *dispatcher) dispatch(ctx context.Context, req *rpcRequest) (*rpcResponse, int) {
	d.log.Debug().Str("method", req.Method).Msg("rpc request")

	switch req.Method {
	case "initialize":
		return result(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools":     map[string]any{"listChanged": true},
				"resources": map[string]any{"listChanged": true, "subscribe": false},
				"prompts":   map[string]any{"listChanged": true},
				"logging":   map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    julesmcp.ServerName,
				"version": d.tools.Version(),
			},
		}), http.StatusOK
	case "notifications/initialized":
		return nil, http.StatusNoContent
	case "ping", "logging/setLevel":
		return result(req.ID, map[string]any{}), http.StatusOK
	case "resources/list":
		return result(req.ID, map[string]any{"resources": []any{}}), http.StatusOK
	case "resources/templates/list":
		return result(req.ID, map[string]any{"resourceTemplates": []any{}}), http.StatusOK
	case "prompts/list":
		return result(req.ID, map[string]any{"prompts": []any{}}), http.StatusOK
	case "completion/complete":
		return result(req.ID, map[string]any{
			"completion": map[string]any{"values": []string{}, "total": 0, "hasMore": false},
		}), http.StatusOK
	case "tools/list":
		return result(req.ID, map[string]any{"tools": d.toolList()}), http.StatusOK
	case "tools/call":
		return d.callTool(ctx, req)
	default:
		return failure(req.ID, mcp.METHOD_NOT_FOUND, "Method not supported: "+req.Method), http.StatusBadRequest
	}
}

func (d *dispatcher) toolList() []mcp.Tool {
	registered := d.tools.Tools()
	out := make([]mcp.Tool, 0, len(registered))
	for _, st := range registered {
		out = append(out, st.Tool)
	}
	return out
}

func (d *dispatcher) callTool(ctx context.Context, req *rpcRequest) (*rpcResponse, int) {
	var p toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return failure(req.ID, mcp.INTERNAL_ERROR, "Internal error: "+err.Error()), http.StatusInternalServerError
		}
	}

	res, err := d.tools.Call(ctx, p.Name, p.Arguments)
	if err != nil {
		if errors.Is(err, julesmcp.ErrUnknownTool) {
			return failure(req.ID, mcp.METHOD_NOT_FOUND, "Tool not found: "+p.Name), http.StatusOK
		}
		d.log.Error().Err(err).Str("tool", p.Name).Msg("tool call failed")
		return failure(req.ID, mcp.INTERNAL_ERROR, fmt.Sprintf("Internal error: %v", err)), http.StatusInternalServerError
	}
	return result(req.ID, res), http.StatusOK
}
