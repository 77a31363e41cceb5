package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPServer runs the API until its context ends, then drains connections.
type HTTPServer struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

const defaultShutdownTimeout = 30 * time.Second

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	shutdown := cfg.HTTPIdleTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}
	return &HTTPServer{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTPWriteTimeout,
			IdleTimeout:       cfg.HTTPIdleTimeout,
		},
		shutdownTimeout: shutdown,
	}
}

// Addr is the listen address.
func (s *HTTPServer) Addr() string { return s.server.Addr }

// Run serves until ctx is done and then shuts down gracefully. A clean
// shutdown returns nil.
func (s *HTTPServer) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
