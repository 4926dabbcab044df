// Package mcp exposes the Jules API as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/joescharf/julesmcp/internal/config"
	"github.com/joescharf/julesmcp/internal/jules"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "jules-mcp-server"

// ErrUnknownTool is returned by Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// JulesAPI is the subset of the Jules gateway the tools depend on.
type JulesAPI interface {
	ListSources(ctx context.Context, p jules.ListSourcesParams) (*jules.SourceList, error)
	GetSource(ctx context.Context, id string) (*jules.Source, error)
	CreateSession(ctx context.Context, req *jules.CreateSessionRequest) (*jules.Session, error)
	ListSessions(ctx context.Context, p jules.PageParams) (*jules.SessionList, error)
	GetSession(ctx context.Context, id string) (*jules.Session, error)
	SendMessage(ctx context.Context, id, prompt string) error
	GetActivity(ctx context.Context, sessionID, activityID string) (*jules.Activity, error)
	ListActivities(ctx context.Context, sessionID string, p jules.PageParams) (*jules.ActivityList, error)
	ApprovePlan(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
}

// Server holds the tool registry. The same handlers back every transport.
type Server struct {
	api     JulesAPI
	cfg     *config.Config
	log     zerolog.Logger
	version string

	tools  []server.ServerTool
	byName map[string]server.ServerTool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for tool failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates the tool registry on top of api.
func NewServer(api JulesAPI, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		api:     api,
		cfg:     cfg,
		log:     zerolog.Nop(),
		version: "dev",
	}
	for _, o := range opts {
		o(s)
	}

	s.register(s.listSourcesTool())
	s.register(s.getSourceTool())
	s.register(s.createSessionTool())
	s.register(s.listSessionsTool())
	s.register(s.getStatusTool())
	s.register(s.sendMessageTool())
	s.register(s.getActivityTool())
	s.register(s.listActivitiesTool())
	s.register(s.approvePlanTool())
	s.register(s.getSessionOutputTool())
	s.register(s.deleteSessionTool())
	s.register(s.searchTool())
	s.register(s.fetchTool())

	return s
}

func (s *Server) register(tool mcp.Tool, handler server.ToolHandlerFunc) {
	st := server.ServerTool{Tool: tool, Handler: handler}
	if s.byName == nil {
		s.byName = make(map[string]server.ServerTool)
	}
	s.tools = append(s.tools, st)
	s.byName[tool.Name] = st
}

// Version is the server version reported to clients.
func (s *Server) Version() string { return s.version }

// Tools returns the registered tools in registration order.
func (s *Server) Tools() []server.ServerTool {
	out := make([]server.ServerTool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Lookup finds a tool by name.
func (s *Server) Lookup(name string) (server.ServerTool, bool) {
	st, ok := s.byName[name]
	return st, ok
}

// Call invokes the named tool with args.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	st, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	return st.Handler(ctx, req)
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(ServerName, s.version, server.WithToolCapabilities(true))
	for _, st := range s.tools {
		srv.AddTool(st.Tool, st.Handler)
	}
	return srv
}

// toolError logs err and returns the failure envelope. hint is appended
// verbatim after a blank line.
func (s *Server) toolError(tool, action string, err error, hint string) *mcp.CallToolResult {
	s.log.Warn().Str("tool", tool).Err(err).Msg("tool call failed")
	text := fmt.Sprintf("Error %s: %s", action, jules.ErrorMessage(err))
	if hint != "" {
		text += "\n\n" + hint
	}
	return mcp.NewToolResultError(text)
}

// sessionIDArg reads and normalizes the sessionId argument.
func sessionIDArg(request mcp.CallToolRequest) (string, error) {
	raw, err := request.RequireString("sessionId")
	if err != nil {
		return "", err
	}
	id := jules.NormalizeSessionID(raw)
	if id == "" {
		return "", errors.New("sessionId must not be empty")
	}
	return id, nil
}
