// Package http exposes the archives services over a gin HTTP API: admin app
// management, file upload/delete/list, health, metrics and optional media
// serving.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Antoney20/archives/internal/logging"
	"github.com/Antoney20/archives/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Pinger reports metadata store health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Addr            string
	SecretKey       string
	AllowedOrigins  []string
	MaxUploadBytes  int64
	MediaRoot       string
	ServeMedia      bool
	ShutdownTimeout time.Duration

	// MaxAdminTokenLifetime rejects admin tokens minted for longer; zero
	// disables the check.
	MaxAdminTokenLifetime time.Duration

	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	addr            string
	secretKey       []byte
	maxAdminTTL     time.Duration
	shutdownTimeout time.Duration
	logger          logging.Logger
	apps            *services.AppService
	files           *services.FileService
	db              Pinger
	engine          *gin.Engine
}

func NewServer(opts Options, logger logging.Logger, apps *services.AppService, files *services.FileService, db Pinger) *Server {
	s := &Server{
		addr:            opts.Addr,
		secretKey:       []byte(opts.SecretKey),
		maxAdminTTL:     opts.MaxAdminTokenLifetime,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger.With("module", "http"),
		apps:            apps,
		files:           files,
		db:              db,
	}
	s.engine = s.routes(opts)
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is canceled, then shuts
// down gracefully. Requests in flight keep running until they finish or the
// shutdown timeout expires; their contexts are not tied to ctx.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server...", "addr", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
