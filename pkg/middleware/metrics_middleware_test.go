package middleware

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	escerrors "github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/escape"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func returning(out string, err error) Handler {
	return func(ctx context.Context, op Op) (string, error) {
		return out, err
	}
}

func TestMetrics_RecordsSuccessAndError(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		h := Chain(returning("&lt;b&gt;", nil), m.Middleware())

		out, err := h(context.Background(), Op{Name: "escape", Context: "html", Input: "<b>"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "&lt;b&gt;" {
			t.Fatalf("out = %q", out)
		}

		if got := metricCounterValue(t, m.operationsTotal.WithLabelValues("escape", "html", "success")); got != 1 {
			t.Errorf("operations_total(success) = %v, want 1", got)
		}
		if got := metricCounterValue(t, m.operationsTotal.WithLabelValues("escape", "html", "error")); got != 0 {
			t.Errorf("operations_total(error) = %v, want 0", got)
		}
		if got := metricHistogramCount(t, m.operationDuration.WithLabelValues("escape")); got != 1 {
			t.Errorf("operation_duration_seconds count = %v, want 1", got)
		}
		if got := metricCounterValue(t, m.bytesIn); got != 3 {
			t.Errorf("bytes_in_total = %v, want 3", got)
		}
		if got := metricCounterValue(t, m.bytesOut); got != 9 {
			t.Errorf("bytes_out_total = %v, want 9", got)
		}
	})

	t.Run("error is labelled by code", func(t *testing.T) {
		m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		h := Chain(returning("", escerrors.New(escerrors.CodeMalformed)), m.Middleware())

		if _, err := h(context.Background(), Op{Name: "unescape", Context: "url", Input: "%zz"}); err == nil {
			t.Fatal("expected error to propagate")
		}

		if got := metricCounterValue(t, m.operationsTotal.WithLabelValues("unescape", "url", "error")); got != 1 {
			t.Errorf("operations_total(error) = %v, want 1", got)
		}
		if got := metricCounterValue(t, m.errorsTotal.WithLabelValues("unescape", "E103")); got != 1 {
			t.Errorf("errors_total(E103) = %v, want 1", got)
		}
		if got := metricCounterValue(t, m.bytesOut); got != 0 {
			t.Errorf("bytes_out_total = %v, want 0", got)
		}
	})

	t.Run("plain error is unknown", func(t *testing.T) {
		m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		h := Chain(returning("", stderrors.New("boom")), m.Middleware())

		_, _ = h(context.Background(), Op{Name: "split"})

		if got := metricCounterValue(t, m.errorsTotal.WithLabelValues("split", "unknown")); got != 1 {
			t.Errorf("errors_total(unknown) = %v, want 1", got)
		}
	})
}

func TestMetrics_RejectedURLs(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		out  string
		want float64
	}{
		{"rejected scheme", Op{Name: "validate_url", Input: "javascript:alert(1)"}, escape.Placeholder, 1},
		{"accepted", Op{Name: "validate_url", Input: "http://x.com/"}, "http://x.com/", 0},
		{"placeholder input", Op{Name: "validate_url", Input: "#"}, escape.Placeholder, 0},
		{"function context", Op{Name: "escape", Context: "function", Input: "data:x"}, escape.Placeholder, 0},
		{"css url context", Op{Name: "escape", Context: "css_url", Input: "vbscript:x"}, escape.Placeholder, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
			h := Chain(returning(tt.out, nil), m.Middleware())
			_, _ = h(context.Background(), tt.op)

			if got := metricCounterValue(t, m.rejectedURLs.WithLabelValues(tt.op.Name)); got != tt.want {
				t.Errorf("rejected_urls_total = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetrics_Streams(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	if got := metricGaugeValue(t, m.activeStreams); got != 1 {
		t.Errorf("active_streams = %v, want 1", got)
	}
}

func TestMetrics_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("edge"), WithSubsystem("esc"),
		WithConstLabels(prometheus.Labels{"region": "eu"}), WithBuckets([]float64{0.001, 1}))
	m.StreamOpened()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "edge_esc_active_streams" {
			found = true
			labels := f.GetMetric()[0].GetLabel()
			if len(labels) != 1 || labels[0].GetName() != "region" || labels[0].GetValue() != "eu" {
				t.Errorf("labels = %v, want region=eu", labels)
			}
		}
	}
	if !found {
		t.Error("edge_esc_active_streams not registered")
	}
}

func TestChain_Order(t *testing.T) {
	var trace []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, op Op) (string, error) {
				trace = append(trace, name+">")
				out, err := next(ctx, op)
				trace = append(trace, "<"+name)
				return out, err
			}
		}
	}

	h := Chain(func(ctx context.Context, op Op) (string, error) {
		trace = append(trace, "handler")
		return op.Input, nil
	}, mark("a"), nil, mark("b"))

	out, err := h(context.Background(), Op{Input: "in"})
	if err != nil || out != "in" {
		t.Fatalf("h() = %q, %v", out, err)
	}

	want := []string{"a>", "b>", "handler", "<b", "<a"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}
