package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("svc")
	if tc.ServiceName != "svc" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults: %+v", tc)
	}
	mc := DefaultMeterConfig("svc")
	if mc.Interval != 15*time.Second || mc.Environment != "development" {
		t.Errorf("unexpected meter defaults: %+v", mc)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Endpoint != "localhost:4318" || c.SampleRate != 1.0 || c.MetricInterval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", c)
	}

	c = Config{Endpoint: "collector:4318", SampleRate: 0.25}
	c.ApplyDefaults()
	if c.Endpoint != "collector:4318" || c.SampleRate != 0.25 {
		t.Errorf("defaults overwrote explicit values: %+v", c)
	}
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, "svc", "1.0.0", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumValue(t *testing.T, agg metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", agg)
	}
	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range want.ToSlice() {
			if v, ok := dp.Attributes.Value(kv.Key); !ok || v != kv.Value {
				match = false
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestProcessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewProcessMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewProcessMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordSpawn(ctx, "cat", StatusOK, 2*time.Millisecond)
	m.RecordSpawn(ctx, "cat", StatusOK, 3*time.Millisecond)
	m.RecordSpawn(ctx, "missing", StatusError, time.Millisecond)
	m.RecordExit(ctx, "cat", 0)
	m.RecordAbandoned(ctx, "cat")

	data := collect(t, reader)
	prog := attribute.String(AttrProgram, "cat")
	if got := sumValue(t, data["process.spawn.total"], prog, attribute.String(AttrStatus, StatusOK)); got != 2 {
		t.Errorf("spawn.total{cat,ok} = %d, want 2", got)
	}
	if got := sumValue(t, data["process.spawn.total"], attribute.String(AttrStatus, StatusError)); got != 1 {
		t.Errorf("spawn.total{error} = %d, want 1", got)
	}
	if got := sumValue(t, data["process.active"], prog); got != 0 {
		t.Errorf("active{cat} = %d, want 0", got)
	}
	if got := sumValue(t, data["process.exit.total"], attribute.String(AttrExitCode, "0")); got != 1 {
		t.Errorf("exit.total{0} = %d, want 1", got)
	}
	hist, ok := data["process.spawn.duration"].(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected histogram, got %T", data["process.spawn.duration"])
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("spawn.duration count = %d, want 3", count)
	}
}

func TestProcessMetrics_NilAndNoop(t *testing.T) {
	var m *ProcessMetrics
	ctx := context.Background()
	m.RecordSpawn(ctx, "x", StatusOK, 0)
	m.RecordExit(ctx, "x", 1)
	m.RecordAbandoned(ctx, "x")

	m, err := NewProcessMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordSpawn(ctx, "x", StatusOK, time.Millisecond)
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestSpanHelpers(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanProcessSpawn)
	SetSpanAttribute(ctx, AttrProgram, "cat")
	SetSpanAttribute(ctx, AttrPID, 42)
	SetSpanAttribute(ctx, "flag", true)
	SetSpanAttribute(ctx, "ignored", struct{}{})
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	s := ended[0]
	if s.Name() != SpanProcessSpawn {
		t.Errorf("name = %q", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want error", s.Status().Code)
	}
	attrs := attribute.NewSet(s.Attributes()...)
	if v, ok := attrs.Value(AttrProgram); !ok || v.AsString() != "cat" {
		t.Errorf("program attribute = %v", v)
	}
	if v, ok := attrs.Value(AttrPID); !ok || v.AsInt64() != 42 {
		t.Errorf("pid attribute = %v", v)
	}
	if _, ok := attrs.Value("ignored"); ok {
		t.Error("unsupported attribute type should be dropped")
	}
	if len(s.Events()) != 1 {
		t.Errorf("expected one error event, got %d", len(s.Events()))
	}
}

func TestSpanHelpers_NoSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, errors.New("no span"))
	if SpanFromContext(ctx) == nil {
		t.Fatal("expected non-nil noop span")
	}
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		value any
		want  attribute.Value
	}{
		{"cat", attribute.StringValue("cat")},
		{uint32(7), attribute.Int64Value(7)},
		{1500 * time.Millisecond, attribute.Float64Value(1.5)},
		{[]string{"-n", "1"}, attribute.StringSliceValue([]string{"-n", "1"})},
	}
	for _, tt := range tests {
		kv, ok := toAttribute("k", tt.value)
		if !ok || kv.Value.Emit() != tt.want.Emit() {
			t.Errorf("toAttribute(%v) = %v, %v", tt.value, kv.Value, ok)
		}
	}
	if _, ok := toAttribute("k", struct{}{}); ok {
		t.Error("struct value should be dropped")
	}
}

func TestSamplerFor(t *testing.T) {
	for _, rate := range []float64{0, 0.5, 1} {
		if samplerFor(rate).Description() == "" {
			t.Errorf("rate %v produced an unnamed sampler", rate)
		}
	}
}
