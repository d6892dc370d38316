// Package server exposes extraction and flowchart layout over HTTP.
//
// Routes:
//
//	GET  /health                  liveness
//	POST /v1/extract              text -> nodes
//	POST /v1/flowchart            text -> nodes -> shapes on a canvas page
//	GET  /v1/pages/:page/shapes   shapes placed on a page
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/randalmurphal/textflow/pkg/textflow"
	"github.com/randalmurphal/textflow/pkg/textflow/canvas"
	"github.com/randalmurphal/textflow/pkg/textflow/observability"
)

// Server serves the HTTP API.
type Server struct {
	pipeline    *textflow.Pipeline
	emitter     *textflow.Emitter
	surface     canvas.Surface
	credential  bool
	defaultPage string
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCredential tells the pipeline whether the service may be called.
func WithCredential(ok bool) Option {
	return func(s *Server) { s.credential = ok }
}

// WithEmitter replaces the default emitter.
func WithEmitter(e *textflow.Emitter) Option {
	return func(s *Server) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithDefaultPage sets the page used when a request names none.
func WithDefaultPage(page string) Option {
	return func(s *Server) {
		if page != "" {
			s.defaultPage = page
		}
	}
}

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Server extracting with p and drawing on surface.
func New(p *textflow.Pipeline, surface canvas.Surface, opts ...Option) *Server {
	s := &Server{
		pipeline:    p,
		emitter:     textflow.NewEmitter(),
		surface:     surface,
		defaultPage: "default",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with tracing middleware and all routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("textflow"))
	router.Use(s.accessLog())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/v1")
	v1.POST("/extract", s.handleExtract)
	v1.POST("/flowchart", s.handleFlowchart)
	v1.GET("/pages/:page/shapes", s.handleShapes)
	return router
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		elapsed := observability.TimedOperation()
		c.Next()
		s.logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Float64("duration_ms", elapsed()),
		)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
