// Package middleware wraps escaping operations with observability.
//
// An escaping operation is described by an Op and executed by a Handler.
// Middleware wraps Handlers; Chain composes them:
//
//	h := middleware.Chain(run,
//	    middleware.OpenTelemetry(),
//	    metrics.Middleware(),
//	)
//	out, err := h(ctx, middleware.Op{Name: "escape", Context: "html", Input: s})
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts one span per operation, named after the operation,
// with escaper.op, escaper.context and escaper.input_bytes attributes. Errors
// are recorded on the span with status Error. The span travels in the
// context passed to the wrapped Handler.
//
// # Prometheus Metrics
//
// NewMetrics registers:
//   - escaper_operations_total{op,context,status}
//   - escaper_operation_duration_seconds{op}
//   - escaper_errors_total{op,code}
//   - escaper_rejected_urls_total{op}
//   - escaper_bytes_in_total, escaper_bytes_out_total
//   - escaper_active_streams
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
