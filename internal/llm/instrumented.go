package llm

import (
	"context"
	"errors"
	"time"

	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// InstrumentedProvider bounds every call with a timeout and records a span and a log line.
type InstrumentedProvider struct {
	inner   Provider
	timeout time.Duration
	logger  *observability.Logger
}

// WithInstrumentation wraps p. A zero timeout leaves deadlines to the caller's context.
func WithInstrumentation(p Provider, timeout time.Duration, logger *observability.Logger) *InstrumentedProvider {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &InstrumentedProvider{inner: p, timeout: timeout, logger: logger}
}

// Complete implements Provider.
func (p *InstrumentedProvider) Complete(ctx context.Context, req Request) (result string, err error) {
	ctx, span := observability.TraceAIFunction(ctx, "Complete",
		observability.AttributeModel(p.inner.ModelID()),
		attribute.Int("ai.max_tokens", req.MaxTokens),
		attribute.Float64("ai.temperature", req.Temperature),
	)
	defer observability.FinishSpan(span, &err)

	parent := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err = p.inner.Complete(ctx, req)
	elapsed := time.Since(start)

	fields := map[string]interface{}{
		"model":       p.inner.ModelID(),
		"max_tokens":  req.MaxTokens,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
			err = contextutils.WrapErrorf(contextutils.ErrTimeout, "provider call timed out after %s: %w", p.timeout, err)
		}
		fields["status_code"] = StatusCode(err)
		p.logger.Warn(ctx, "Provider call failed", fields, map[string]interface{}{"error": err.Error()})
		return "", err
	}

	fields["response_chars"] = len(result)
	span.SetAttributes(attribute.Int("ai.response_chars", len(result)))
	p.logger.Debug(ctx, "Provider call completed", fields)
	return result, nil
}

// ModelID implements Provider.
func (p *InstrumentedProvider) ModelID() string {
	return p.inner.ModelID()
}
