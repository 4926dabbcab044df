// Package transport binds the tool registry to a client channel: stdio,
// stateless HTTP, or the durable multi-channel HTTP server.
package transport

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joescharf/julesmcp/internal/config"
	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// Transport runs until Stop is called or its context ends.
type Transport interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// New selects the transport named by cfg.Transport.
func New(cfg *config.Config, tools *julesmcp.Server, log zerolog.Logger) (Transport, error) {
	switch cfg.Transport {
	case config.TransportStdio, "":
		return NewStdio(tools, log), nil
	case config.TransportHTTP:
		return NewStateless(cfg, tools, log), nil
	case config.TransportDurable:
		return NewDurable(cfg, tools, log), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
