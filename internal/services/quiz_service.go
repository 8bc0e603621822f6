package services

import (
	"context"
	"fmt"
	"strings"

	"quizgen/internal/config"
	"quizgen/internal/llm"
	"quizgen/internal/models"
	"quizgen/internal/observability"
	"quizgen/internal/prompts"
	"quizgen/internal/repair"
	contextutils "quizgen/internal/utils"
)

// QuizServiceInterface generates validated quizzes
type QuizServiceInterface interface {
	// GenerateQuiz returns exactly req.Count() questions or an error
	GenerateQuiz(ctx context.Context, req models.QuizRequest) ([]models.QuizQuestion, error)
}

// QuizService drives the prompt, model call, repair and validation loop
type QuizService struct {
	provider    llm.Provider
	prompts     *prompts.Manager
	pipeline    *repair.Pipeline
	metrics     *observability.QuizMetrics
	logger      *observability.Logger
	maxAttempts int
	tokenLimit  int
}

// NewQuizService builds a QuizService on an injected provider. metrics may be nil.
func NewQuizService(provider llm.Provider, pm *prompts.Manager, cfg config.AIConfig, metrics *observability.QuizMetrics, logger *observability.Logger) *QuizService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultMaxGenerationAttempts
	}
	return &QuizService{
		provider:    provider,
		prompts:     pm,
		pipeline:    repair.NewPipeline(provider, pm, cfg.MaxTokens, metrics, logger),
		metrics:     metrics,
		logger:      logger,
		maxAttempts: maxAttempts,
		tokenLimit:  cfg.MaxTokens,
	}
}

// AdaptComplexity moves one tier up after a score of at least 80 and one tier down
// after a score of at most 50. Without a previous score the tier is unchanged.
func AdaptComplexity(c models.Complexity, previousScore *float64) models.Complexity {
	if previousScore == nil {
		return c
	}
	switch {
	case *previousScore >= 80:
		return c.Harder()
	case *previousScore <= 50:
		return c.Easier()
	default:
		return c
	}
}

// GenerateQuiz runs at most maxAttempts generation attempts. Exhausted credits abort
// at once; any other failure is retried.
func (s *QuizService) GenerateQuiz(ctx context.Context, req models.QuizRequest) (result []models.QuizQuestion, err error) {
	topic := contextutils.SanitizeInput(req.Topic)
	n := req.Count()

	ctx, span := observability.TraceQuizFunction(ctx, "generate_quiz",
		observability.AttributeTopic(topic),
		observability.AttributeNumQuestions(n),
		observability.AttributeUserID(contextutils.GetUserIDFromContext(ctx)),
	)
	defer observability.FinishSpan(span, &err)

	if topic == "" {
		return nil, contextutils.NewWithDetails(contextutils.ErrMissingRequired, "topic is required", nil)
	}
	complexity, ok := models.ParseComplexity(req.Complexity)
	if !ok {
		return nil, contextutils.NewWithDetails(contextutils.ErrInvalidInput, fmt.Sprintf("unknown complexity %q", req.Complexity), nil)
	}
	complexity = AdaptComplexity(complexity, req.PreviousScore)
	span.SetAttributes(observability.AttributeComplexity(string(complexity)))

	prompt, err := s.prompts.QuizGeneration(topic, string(complexity), n)
	if err != nil {
		return nil, err
	}

	step := StartGeneration()
	for !step.Terminal() {
		record := models.GenerationAttempt{Number: step.Attempt}
		questions, attemptErr := s.attempt(ctx, prompt, n, &record)
		record.Err = attemptErr
		next := NextGenerationStep(step, attemptErr, s.maxAttempts)
		s.metrics.RecordAttempt(ctx, attemptOutcome(next))
		if next.State == StateSucceeded {
			s.logger.Info(ctx, "quiz generated", map[string]interface{}{
				"topic":      topic,
				"complexity": string(complexity),
				"questions":  len(questions),
				"attempt":    step.Attempt,
			})
			return questions, nil
		}
		s.logger.Warn(ctx, "quiz generation attempt failed", map[string]interface{}{
			"attempt":         record.Number,
			"error":           record.Err.Error(),
			"raw_length":      len(record.Raw),
			"repaired_length": len(record.Repaired),
			"next":            next.State.String(),
		})
		step = next
	}

	if step.State == StateCreditsExhausted {
		return nil, contextutils.NewWithDetails(contextutils.ErrInsufficientCredits, llm.Describe(step.LastErr), step.LastErr)
	}
	failed := contextutils.NewWithDetails(contextutils.ErrGenerationFailed, llm.Describe(step.LastErr), step.LastErr)
	failed.Message = fmt.Sprintf("Failed to generate quiz after %d attempts", step.Attempt)
	return nil, failed
}

// attempt performs one prompt, call, repair and validate pass, filling in record
func (s *QuizService) attempt(ctx context.Context, prompt string, n int, record *models.GenerationAttempt) (result []models.QuizQuestion, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "generation_attempt",
		observability.AttributeAttempt(record.Number),
		observability.AttributeModel(s.provider.ModelID()),
	)
	defer observability.FinishSpan(span, &err)

	raw, err := s.provider.Complete(ctx, llm.UserPrompt(prompt, config.GenerationMaxTokens(n, s.tokenLimit), config.GenerationTemperature))
	if err != nil {
		return nil, err
	}
	record.Raw = raw
	if strings.TrimSpace(raw) == "" {
		return nil, contextutils.NewWithDetails(contextutils.ErrParseFailure, "model returned an empty completion", nil)
	}

	repaired, err := s.pipeline.Repair(ctx, raw, n)
	if err != nil {
		return nil, err
	}
	record.Repaired = string(repaired)
	return ValidateQuiz(repaired, n)
}

func attemptOutcome(next GenerationStep) string {
	switch next.State {
	case StateSucceeded:
		return "success"
	case StateCreditsExhausted:
		return "insufficient_credits"
	default:
		return "failure"
	}
}
