package observability

import (
	"context"

	"quizgen/internal/config"
	contextutils "quizgen/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes an OTLP exporting MeterProvider
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithHeaders(cfg.Headers)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithHeaders(cfg.Headers)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// QuizMetrics holds the counters recorded by the generation and explanation services
type QuizMetrics struct {
	attempts        otelmetric.Int64Counter
	repairFallbacks otelmetric.Int64Counter
	explanations    otelmetric.Int64Counter
}

// NewQuizMetrics creates the quiz instruments on the given provider, or the global one when nil
func NewQuizMetrics(mp otelmetric.MeterProvider) (*QuizMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(tracerName)

	attempts, err := meter.Int64Counter("quiz.generation.attempts",
		otelmetric.WithDescription("Quiz generation attempts by outcome"))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create attempts counter: %w", err)
	}
	repairFallbacks, err := meter.Int64Counter("quiz.repair.fallbacks",
		otelmetric.WithDescription("Model-assisted JSON repair calls by outcome"))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create repair counter: %w", err)
	}
	explanations, err := meter.Int64Counter("quiz.explanations",
		otelmetric.WithDescription("Answer explanation calls by outcome"))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create explanation counter: %w", err)
	}

	return &QuizMetrics{attempts: attempts, repairFallbacks: repairFallbacks, explanations: explanations}, nil
}

// RecordAttempt counts one generation attempt. A nil receiver records nothing.
func (m *QuizMetrics) RecordAttempt(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.attempts.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRepairFallback counts one model-assisted repair call
func (m *QuizMetrics) RecordRepairFallback(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.repairFallbacks.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordExplanation counts one explanation call
func (m *QuizMetrics) RecordExplanation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.explanations.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}
