package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/escaper/internal/errors"
)

// Default tracer name for escaper spans.
const defaultTracerName = "github.com/vango-dev/escaper"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer.
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: otel.GetTracerProvider()
	TracerProvider trace.TracerProvider

	// Filter determines which operations to trace.
	// If nil, all operations are traced.
	Filter func(op Op) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(op Op) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithFilter sets a filter function for operations.
func WithFilter(filter func(op Op) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(op Op) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry returns middleware that starts one span per operation.
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerName == "" {
		config.TracerName = defaultTracerName
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return func(next Handler) Handler {
		return func(ctx context.Context, op Op) (string, error) {
			if config.Filter != nil && !config.Filter(op) {
				return next(ctx, op)
			}

			attrs := []attribute.KeyValue{
				attribute.String("escaper.op", op.Name),
				attribute.Int("escaper.input_bytes", len(op.Input)),
			}
			if op.Context != "" {
				attrs = append(attrs, attribute.String("escaper.context", op.Context))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(op)...)
			}

			ctx, span := tracer.Start(ctx, spanName(op),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			out, err := next(ctx, op)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				if code := errors.CodeOf(err); code != "" {
					span.SetAttributes(attribute.String("escaper.error_code", code))
				}
				return out, err
			}

			span.SetAttributes(attribute.Int("escaper.output_bytes", len(out)))
			span.SetStatus(codes.Ok, "")
			return out, nil
		}
	}
}

func spanName(op Op) string {
	if op.Name == "" {
		return "escaper.op"
	}
	return "escaper." + op.Name
}

// SpanFromContext returns the span started by OpenTelemetry, or a no-op span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
