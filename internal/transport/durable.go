package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/joescharf/julesmcp/internal/api"
	"github.com/joescharf/julesmcp/internal/config"
	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// DefaultInstance is the namespace key every front-door request routes to.
const DefaultInstance = "default"

const defaultKeepAlive = 15 * time.Second

// Namespace lazily creates one Instance per key and returns the same one
// on every later lookup.
type Namespace struct {
	mu        sync.Mutex
	instances map[string]*Instance
	create    func(name string) *Instance
}

// NewNamespace returns a namespace that builds instances with create.
func NewNamespace(create func(name string) *Instance) *Namespace {
	return &Namespace{
		instances: make(map[string]*Instance),
		create:    create,
	}
}

// Get returns the instance for name, creating it on first use.
func (n *Namespace) Get(name string) *Instance {
	n.mu.Lock()
	defer n.mu.Unlock()
	if inst, ok := n.instances[name]; ok {
		return inst
	}
	inst := n.create(name)
	n.instances[name] = inst
	return inst
}

// Instance is one long-lived server holding every durable route.
type Instance struct {
	name      string
	tools     *julesmcp.Server
	rpc       *dispatcher
	keepAlive time.Duration
	log       zerolog.Logger
	handler   http.Handler
}

// NewInstance wires the durable routes for tools.
func NewInstance(name string, tools *julesmcp.Server, keepAlive time.Duration, log zerolog.Logger) *Instance {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	log = log.With().Str("instance", name).Logger()
	i := &Instance{
		name:      name,
		tools:     tools,
		rpc:       &dispatcher{tools: tools, log: log},
		keepAlive: keepAlive,
		log:       log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", i.handleHealth)
	mux.HandleFunc("GET /sse", i.handleSSE)
	mux.HandleFunc("POST /message", i.handleRPC)
	mux.HandleFunc("POST /mcp", i.handleRPC)
	mux.HandleFunc("GET /ws", i.handleWS)
	api.NewServer(tools, log).Register(mux)

	i.handler = api.CORS(mux)
	return i
}

// Name is the namespace key.
func (i *Instance) Name() string { return i.name }

func (i *Instance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.handler.ServeHTTP(w, r)
}

func (i *Instance) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"server":  julesmcp.ServerName,
		"version": i.tools.Version(),
		"tools":   len(i.tools.Tools()),
		"type":    string(config.TransportDurable),
	})
}

func (i *Instance) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sessionID := ulid.Make().String()
	if _, err := fmt.Fprintf(w, "event: endpoint\ndata: %s/message?sessionId=%s\n\n", api.Origin(r), sessionID); err != nil {
		return
	}
	flusher.Flush()
	i.log.Debug().Str("session", sessionID).Msg("sse stream opened")

	ticker := time.NewTicker(i.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			i.log.Debug().Str("session", sessionID).Msg("sse stream closed")
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (i *Instance) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		api.WriteJSON(w, http.StatusInternalServerError, failure(nil, mcp.INTERNAL_ERROR, "Internal error: "+err.Error()))
		return
	}

	resp, status := i.rpc.handle(r.Context(), body)
	if resp == nil {
		w.WriteHeader(status)
		return
	}
	api.WriteJSON(w, status, resp)
}

func (i *Instance) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		i.log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, ctx.Err()) {
				i.log.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		resp, _ := i.rpc.handle(ctx, data)
		if resp == nil {
			continue
		}
		out, err := json.Marshal(resp)
		if err != nil {
			i.log.Error().Err(err).Msg("encode websocket response")
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			i.log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// Durable serves every request from the default namespace instance.
type Durable struct {
	*httpServer

	ns      *Namespace
	handler http.Handler
}

// NewDurable builds the durable HTTP transport.
func NewDurable(cfg *config.Config, tools *julesmcp.Server, log zerolog.Logger) *Durable {
	d := &Durable{
		ns: NewNamespace(func(name string) *Instance {
			return NewInstance(name, tools, cfg.HTTP.KeepAlive, log)
		}),
	}
	front := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.ns.Get(DefaultInstance).ServeHTTP(w, r)
	})
	d.handler = withRequestLogging(front, log)
	d.httpServer = newHTTPServer(cfg.HTTP.ListenAddr(), d.handler, log)
	return d
}

// Namespace exposes the instance registry.
func (d *Durable) Namespace() *Namespace { return d.ns }

// Handler exposes the routes without a listener.
func (d *Durable) Handler() http.Handler { return d.handler }
