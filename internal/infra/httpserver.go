package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer owns the API listener lifecycle: Start blocks on
// ListenAndServe, Shutdown drains in-flight requests. Write timeout is
// generous because admin content uploads can run to 100MB.
type HTTPServer struct {
	server *http.Server
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr returns the listen address, for startup logging.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start blocks until the listener stops; it returns http.ErrServerClosed
// after a graceful Shutdown.
func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
