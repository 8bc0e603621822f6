package services

import (
	"context"
	"strings"

	"quizgen/internal/config"
	"quizgen/internal/llm"
	"quizgen/internal/models"
	"quizgen/internal/observability"
	"quizgen/internal/prompts"
	"quizgen/internal/repair"
	contextutils "quizgen/internal/utils"
)

// ExplanationServiceInterface explains quiz answers
type ExplanationServiceInterface interface {
	ExplainAnswer(ctx context.Context, req models.ExplanationRequest) (string, error)
}

// ExplanationService makes a single model call per explanation
type ExplanationService struct {
	provider llm.Provider
	prompts  *prompts.Manager
	metrics  *observability.QuizMetrics
	logger   *observability.Logger
}

// NewExplanationService builds an ExplanationService. metrics may be nil.
func NewExplanationService(provider llm.Provider, pm *prompts.Manager, metrics *observability.QuizMetrics, logger *observability.Logger) *ExplanationService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &ExplanationService{provider: provider, prompts: pm, metrics: metrics, logger: logger}
}

// ExplainAnswer explains why the correct option is right and, when the learner
// chose differently, why their choice is wrong.
func (s *ExplanationService) ExplainAnswer(ctx context.Context, req models.ExplanationRequest) (result string, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "explain_answer",
		observability.AttributeModel(s.provider.ModelID()),
		observability.AttributeUserID(contextutils.GetUserIDFromContext(ctx)),
	)
	defer observability.FinishSpan(span, &err)

	question := strings.TrimSpace(req.Question)
	if question == "" || strings.TrimSpace(req.SelectedOption) == "" || strings.TrimSpace(req.CorrectOption) == "" {
		return "", contextutils.NewWithDetails(contextutils.ErrMissingRequired, "question and both options are required", nil)
	}

	prompt, err := s.prompts.Explanation(question, req.SelectedOption, req.CorrectOption)
	if err != nil {
		return "", err
	}

	text, err := s.provider.Complete(ctx, llm.UserPrompt(prompt, config.ExplanationMaxTokens, config.ExplanationTemperature))
	if err != nil {
		if llm.IsInsufficientCredits(err) {
			s.metrics.RecordExplanation(ctx, "insufficient_credits")
			return "", contextutils.NewWithDetails(contextutils.ErrInsufficientCredits, llm.Describe(err), err)
		}
		s.metrics.RecordExplanation(ctx, "failure")
		s.logger.Error(ctx, "explanation call failed", err, map[string]interface{}{"correct": req.IsCorrect()})
		return "", contextutils.NewWithDetails(contextutils.ErrExplanationFailed, llm.Describe(err), err)
	}

	s.metrics.RecordExplanation(ctx, "success")
	return repair.StripCodeFences(text), nil
}
