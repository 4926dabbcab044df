package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// httpServer is the listen/shutdown half shared by the network transports.
type httpServer struct {
	srv *http.Server
	log zerolog.Logger
}

func newHTTPServer(addr string, h http.Handler, log zerolog.Logger) *httpServer {
	return &httpServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start listens until Stop. Request contexts derive from ctx so streams
// end when it is cancelled.
func (s *httpServer) Start(ctx context.Context) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	s.log.Info().Str("addr", s.srv.Addr).Msg("listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *httpServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
