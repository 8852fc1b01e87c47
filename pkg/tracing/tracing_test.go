package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// initEnabled runs InitTracer against an unroutable collector endpoint. The
// batcher exports asynchronously, so initialization succeeds without a
// listener on the other side.
func initEnabled(t *testing.T, sampleRate float64) func(context.Context) error {
	t.Helper()

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracer(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "127.0.0.1:0",
		SampleRate:     sampleRate,
		Enabled:        true,
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	return shutdown
}

func TestInitTracer_Disabled(t *testing.T) {
	cfg := DefaultConfig("test-service")
	cfg.Enabled = false

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown, "shutdown must be callable even when disabled")

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_Enabled_SetsGlobalProvider(t *testing.T) {
	shutdown := initEnabled(t, 1.0)
	defer shutdown(context.Background()) //nolint:errcheck

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "global provider should be the SDK provider, got %T", otel.GetTracerProvider())
}

func TestInitTracer_SampleRates(t *testing.T) {
	for _, rate := range []float64{0.0, 0.5, 1.0} {
		shutdown := initEnabled(t, rate)
		assert.NotNil(t, shutdown)
		_ = shutdown(context.Background())
	}
}

func TestSampler_Selection(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.0).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0.0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
	assert.Contains(t, sampler(0.25).Description(), "ParentBased")
}

func TestSampler_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.7).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(-0.3).Description())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("my-service")

	assert.Equal(t, "my-service", cfg.ServiceName)
	assert.False(t, cfg.Enabled, "export stays off until explicitly enabled")
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestTracer_StartsSpans(t *testing.T) {
	tracer := Tracer("test-component")
	require.NotNil(t, tracer)

	// Without an SDK provider this yields a no-op span; it must still be
	// safe to use.
	_, span := tracer.Start(context.Background(), "test-op")
	span.End()
}
