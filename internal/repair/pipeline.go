// Package repair turns raw model output into a parseable JSON array of quiz
// questions. Each stage is a plain function; Pipeline chains them and falls back
// to asking the model to fix its own output when local repair is not enough.
package repair

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"quizgen/internal/config"
	"quizgen/internal/llm"
	"quizgen/internal/observability"
	"quizgen/internal/prompts"
	contextutils "quizgen/internal/utils"
)

var (
	fencePattern      = regexp.MustCompile("```(?:json|JSON)?")
	arrayStartPattern = regexp.MustCompile(`\[\s*\{`)
	arrayEndPattern   = regexp.MustCompile(`\}\s*,?\s*\]`)
)

// StripCodeFences removes markdown code fences, tagged or not, and trims whitespace.
func StripCodeFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// ExtractArraySpan returns the text from the first "[" followed by "{" through the
// last "}]", inclusive. A trailing comma before the "]" is tolerated. Text without
// such a span is returned unchanged.
func ExtractArraySpan(text string) string {
	start := arrayStartPattern.FindStringIndex(text)
	if start == nil {
		return text
	}
	ends := arrayEndPattern.FindAllStringIndex(text[start[0]:], -1)
	if len(ends) == 0 {
		return text
	}
	last := ends[len(ends)-1]
	return text[start[0] : start[0]+last[1]]
}

// AutoRepair fixes structural JSON damage: trailing commas, single quotes,
// unquoted keys, missing brackets and similar.
func AutoRepair(text string) (string, error) {
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrParseFailure, "auto-repair failed: %v", err)
	}
	return repaired, nil
}

// Parse checks that text is well-formed JSON holding an array.
func Parse(text string) (json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrParseFailure, "invalid JSON array: %v", err)
	}
	return json.RawMessage(text), nil
}

// Local runs every stage that does not need the model.
func Local(raw string) (json.RawMessage, error) {
	text := ExtractArraySpan(StripCodeFences(raw))
	if parsed, err := Parse(text); err == nil {
		return parsed, nil
	}
	repaired, err := AutoRepair(text)
	if err != nil {
		return nil, err
	}
	return Parse(repaired)
}

// Pipeline repairs model output, using the model itself as a last resort.
type Pipeline struct {
	provider   llm.Provider
	prompts    *prompts.Manager
	tokenLimit int
	metrics    *observability.QuizMetrics
	logger     *observability.Logger
}

// NewPipeline builds a pipeline whose fallback calls provider with at most tokenLimit
// completion tokens (0 for no cap). metrics may be nil.
func NewPipeline(provider llm.Provider, pm *prompts.Manager, tokenLimit int, metrics *observability.QuizMetrics, logger *observability.Logger) *Pipeline {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Pipeline{provider: provider, prompts: pm, tokenLimit: tokenLimit, metrics: metrics, logger: logger}
}

// Repair returns raw as a parseable JSON array. A provider error from the fallback
// call stays in the returned chain so callers can detect exhausted credits.
func (p *Pipeline) Repair(ctx context.Context, raw string, expectedCount int) (result json.RawMessage, err error) {
	ctx, span := observability.TraceRepairFunction(ctx, "repair", observability.AttributeNumQuestions(expectedCount))
	defer observability.FinishSpan(span, &err)

	parsed, localErr := Local(raw)
	if localErr == nil {
		return parsed, nil
	}

	p.logger.Warn(ctx, "local JSON repair failed, asking model to fix output", map[string]interface{}{
		"error":      localErr.Error(),
		"raw_length": len(raw),
	})

	prompt, err := p.prompts.JSONRepair(raw, expectedCount)
	if err != nil {
		return nil, err
	}
	fixed, err := p.provider.Complete(ctx, llm.UserPrompt(prompt, config.GenerationMaxTokens(expectedCount, p.tokenLimit), config.RepairTemperature))
	if err != nil {
		p.metrics.RecordRepairFallback(ctx, "provider_error")
		return nil, contextutils.WrapErrorf(contextutils.ErrParseFailure, "repair call failed: %w", err)
	}

	parsed, err = Local(fixed)
	if err != nil {
		p.metrics.RecordRepairFallback(ctx, "unparseable")
		return nil, contextutils.WrapErrorf(contextutils.ErrParseFailure, "model repair output still invalid: %v", err)
	}
	p.metrics.RecordRepairFallback(ctx, "repaired")
	return parsed, nil
}
