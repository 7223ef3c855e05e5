package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/escaper/internal/config"
	"github.com/vango-dev/escaper/pkg/escape"
	"github.com/vango-dev/escaper/pkg/middleware"
)

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 10 * time.Second

// Server serves the escaping engine.
type Server struct {
	cfg    *config.Config
	engine *escape.Engine
	logger *slog.Logger

	registry       *prometheus.Registry
	metrics        *middleware.Metrics
	tracerProvider trace.TracerProvider
	mws            []middleware.Middleware

	checkOrigin func(r *http.Request) bool
	upgrader    websocket.Upgrader
	router      chi.Router

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a Server from cfg. cfg must be valid.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")

	if s.engine == nil {
		policy, err := cfg.Policy()
		if err != nil {
			return nil, err
		}
		s.engine = escape.NewEngine(policy, s.logger)
	}
	if s.checkOrigin == nil {
		s.checkOrigin = SameOriginCheck
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	if cfg.Tracing.Enabled {
		otelOpts := []middleware.OTelOption{middleware.WithTracerName(cfg.Tracing.TracerName)}
		if s.tracerProvider != nil {
			otelOpts = append(otelOpts, middleware.WithTracerProvider(s.tracerProvider))
		}
		s.mws = append(s.mws, middleware.OpenTelemetry(otelOpts...))
	}
	if cfg.Metrics.Enabled {
		if s.registry == nil {
			s.registry = prometheus.NewRegistry()
			s.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		s.metrics = middleware.NewMetrics(
			middleware.WithRegistry(s.registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
		s.mws = append(s.mws, s.metrics.Middleware())
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/escape", s.handleEscape)
		r.Post("/unescape", s.handleUnescape)
		r.Post("/validate/url", s.handleValidate(false))
		r.Post("/validate/css-url", s.handleValidate(true))
		r.Post("/split", s.handleSplit)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Engine returns the escaping engine.
func (s *Server) Engine() *escape.Engine {
	return s.engine
}

// Metrics returns the server's metrics, or nil when metrics are disabled.
func (s *Server) Metrics() *middleware.Metrics {
	return s.metrics
}

// Reload applies the reloadable parts of cfg: the URL scheme policy.
// Address, timeouts and sizes take effect on restart.
func (s *Server) Reload(cfg *config.Config) error {
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	s.engine.SetPolicy(policy)
	return nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout.D(),
		ReadTimeout:       s.cfg.Server.ReadTimeout.D(),
		WriteTimeout:      s.cfg.Server.WriteTimeout.D(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.logger.Enabled(r.Context(), slog.LevelDebug) {
			next.ServeHTTP(w, r)
			return
		}
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
