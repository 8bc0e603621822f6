package observability

import (
	"context"
	"testing"

	"quizgen/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupObservability_NoneEnabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "grpc",
		Endpoint:    "localhost:4317",
		Insecure:    true,
	}
	tp, mp, logger, err := SetupObservability(cfg, "test-service", "info")
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.Nil(t, mp)
	require.NotNil(t, logger)
}

func TestSetupObservability_StandardSDK(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		EnableMetrics:  true,
		ServiceVersion: "1.0.0",
		Protocol:       "grpc",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SamplingRate:   1.0,
	}
	tp, mp, logger, err := SetupObservability(cfg, "test-service", "debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, mp)

	_, isStandardSDK := tp.(*sdktrace.TracerProvider)
	assert.True(t, isStandardSDK, "Expected standard SDK TracerProvider")
	assert.Equal(t, "test-service", cfg.ServiceName)
}

func TestSetupObservability_UseAutoSDK(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		UseAutoSDK:     true,
		ServiceVersion: "1.0.0",
	}
	tp, _, _, err := SetupObservability(cfg, "test-service", "info")
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, isStandardSDK := tp.(*sdktrace.TracerProvider)
	assert.False(t, isStandardSDK, "Expected Auto SDK TracerProvider")
}

func TestInitStandardTracing_HTTP(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		ServiceName:  "test-service",
		Protocol:     "http",
		Endpoint:     "localhost:4318",
		Insecure:     true,
		SamplingRate: 0.5,
	}
	tp, err := InitStandardTracing(cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)
}

func TestInitStandardTracing_InvalidProtocol(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "invalid",
	}
	tp, err := InitStandardTracing(cfg)
	require.Error(t, err)
	assert.Nil(t, tp)
	assert.Contains(t, err.Error(), "unsupported otel protocol")
}

func TestInitMetrics_InvalidProtocol(t *testing.T) {
	_, err := InitMetrics(&config.OpenTelemetryConfig{Protocol: "smoke-signals"})
	require.Error(t, err)
}

func TestQuizMetrics_RecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewQuizMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAttempt(ctx, "success")
	m.RecordAttempt(ctx, "invalid_format")
	m.RecordRepairFallback(ctx, "success")
	m.RecordExplanation(ctx, "failure")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		for _, dp := range sum.DataPoints {
			totals[metric.Name] += dp.Value
		}
	}
	assert.Equal(t, int64(2), totals["quiz.generation.attempts"])
	assert.Equal(t, int64(1), totals["quiz.repair.fallbacks"])
	assert.Equal(t, int64(1), totals["quiz.explanations"])
}

func TestQuizMetrics_NilReceiver(t *testing.T) {
	var m *QuizMetrics
	assert.NotPanics(t, func() {
		m.RecordAttempt(context.Background(), "success")
		m.RecordRepairFallback(context.Background(), "success")
		m.RecordExplanation(context.Background(), "success")
	})
}
