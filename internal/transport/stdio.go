package transport

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// Stdio serves newline-delimited JSON-RPC over a reader/writer pair.
// Stdout carries protocol frames only; diagnostics go to the logger.
type Stdio struct {
	srv *server.StdioServer
	in  io.Reader
	out io.Writer
	log zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) StdioOption {
	return func(s *Stdio) {
		s.in = in
		s.out = out
	}
}

// NewStdio creates a stdio transport over the process streams.
func NewStdio(tools *julesmcp.Server, log zerolog.Logger, opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:  os.Stdin,
		out: os.Stdout,
		log: log,
	}
	for _, o := range opts {
		o(s)
	}
	s.srv = server.NewStdioServer(tools.MCPServer())
	s.srv.SetErrorLogger(stdlog.New(log, "", 0))
	return s
}

// Start blocks until the input closes or Stop is called.
func (s *Stdio) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.log.Info().Msg("serving MCP on stdio")
	err := s.srv.Listen(ctx, s.in, s.out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Stop ends a running Start.
func (s *Stdio) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
