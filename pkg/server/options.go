package server

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/escaper/pkg/escape"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEngine sets the escaping engine. Default: an engine built from the
// configured scheme policy.
func WithEngine(e *escape.Engine) Option {
	return func(s *Server) {
		s.engine = e
	}
}

// WithRegistry sets the registry metrics are registered with and served
// from. Default: a new registry per server.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithTracerProvider sets the tracer provider used when tracing is enabled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// WithCheckOrigin sets the WebSocket origin check. Default: SameOriginCheck.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.checkOrigin = fn
	}
}

// SameOriginCheck accepts WebSocket requests without an Origin header or
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}
