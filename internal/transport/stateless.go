package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/joescharf/julesmcp/internal/api"
	"github.com/joescharf/julesmcp/internal/config"
	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

const maxMessageBytes = 4 << 20

// Stateless answers each HTTP request independently: one JSON-RPC message
// in, at most one response out.
type Stateless struct {
	*httpServer

	mcpSrv  *server.MCPServer
	log     zerolog.Logger
	handler http.Handler
}

// NewStateless builds the stateless HTTP transport.
func NewStateless(cfg *config.Config, tools *julesmcp.Server, log zerolog.Logger) *Stateless {
	s := &Stateless{
		mcpSrv: tools.MCPServer(),
		log:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /message", s.handleMessage)
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpSrv, server.WithStateLess(true)))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "transport": "http-jsonrpc"})
	})

	s.handler = withRequestLogging(mux, log)
	s.httpServer = newHTTPServer(cfg.HTTP.ListenAddr(), s.handler, log)
	return s
}

// Handler exposes the routes without a listener.
func (s *Stateless) Handler() http.Handler { return s.handler }

func (s *Stateless) handleMessage(w http.ResponseWriter, r *http.Request) {
	out := newResponder(w, s.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil || len(bytes.TrimSpace(body)) == 0 || !json.Valid(body) {
		out.send(http.StatusBadRequest, failure(nil, mcp.PARSE_ERROR, "Parse error: request body must be one JSON-RPC message"))
		return
	}

	msg := s.mcpSrv.HandleMessage(r.Context(), json.RawMessage(body))
	if msg == nil {
		out.empty(http.StatusAccepted)
		return
	}
	out.send(http.StatusOK, msg)
}

// responder writes at most one response per request.
type responder struct {
	w    http.ResponseWriter
	log  zerolog.Logger
	once sync.Once
}

func newResponder(w http.ResponseWriter, log zerolog.Logger) *responder {
	return &responder{w: w, log: log}
}

func (r *responder) send(status int, v any) bool {
	return r.do(func() { api.WriteJSON(r.w, status, v) })
}

func (r *responder) empty(status int) bool {
	return r.do(func() { r.w.WriteHeader(status) })
}

func (r *responder) do(write func()) bool {
	sent := false
	r.once.Do(func() {
		write()
		sent = true
	})
	if !sent {
		r.log.Warn().Msg("response already written; dropping duplicate")
	}
	return sent
}
