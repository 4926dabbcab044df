// Package api serves the registered tools as plain REST endpoints with an
// OpenAPI description, for clients that do not speak MCP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// Server provides the REST API handlers.
type Server struct {
	tools *julesmcp.Server
	log   zerolog.Logger
}

// NewServer creates a new API server over the tool registry.
func NewServer(tools *julesmcp.Server, log zerolog.Logger) *Server {
	return &Server{tools: tools, log: log}
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/{tool}", s.callTool)
	mux.HandleFunc("GET /openapi.json", s.openAPI)
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return CORS(mux)
}

// CORS allows any origin and answers preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Protocol-Version, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) callTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("tool")
	if _, ok := s.tools.Lookup(name); !ok {
		WriteError(w, http.StatusNotFound, "tool not found: "+name)
		return
	}

	args := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "invalid JSON body: " + err.Error(), "isError": true})
		return
	}

	result, err := s.tools.Call(r.Context(), name, args)
	if err != nil {
		if errors.Is(err, julesmcp.ErrUnknownTool) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.Error().Err(err).Str("tool", name).Msg("rest tool call failed")
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error(), "isError": true})
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) openAPI(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, OpenAPIDocument(s.tools.Tools(), s.tools.Version(), Origin(r)))
}

// OpenAPIDocument describes one POST /api/<tool> operation per tool.
func OpenAPIDocument(tools []server.ServerTool, version, url string) map[string]any {
	envelope := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{"type": "string"},
						"text": map[string]any{"type": "string"},
					},
				},
			},
			"isError": map[string]any{"type": "boolean"},
		},
	}

	paths := make(map[string]any, len(tools))
	for _, st := range tools {
		t := st.Tool
		paths["/api/"+t.Name] = map[string]any{
			"post": map[string]any{
				"operationId": t.Name,
				"summary":     t.Description,
				"description": t.Description,
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						"application/json": map[string]any{"schema": t.InputSchema},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{
						"description": "Tool result envelope",
						"content": map[string]any{
							"application/json": map[string]any{"schema": envelope},
						},
					},
					"404": map[string]any{"description": "Unknown tool"},
					"500": map[string]any{"description": "Server error"},
				},
			},
		}
	}

	doc := map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":       "Jules MCP API",
			"description": "REST access to the Jules MCP tools",
			"version":     version,
		},
		"paths": paths,
	}
	if url != "" {
		doc["servers"] = []map[string]any{{"url": url}}
	}
	return doc
}

// Origin reconstructs the scheme and host the client used to reach us.
func Origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}
