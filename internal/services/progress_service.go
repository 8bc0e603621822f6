package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"quizgen/internal/config"
	"quizgen/internal/models"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"
)

// ProgressServiceInterface records and summarizes quiz results
type ProgressServiceInterface interface {
	SaveResult(ctx context.Context, userID string, input models.SaveQuizResultRequest) (*models.QuizResult, error)
	History(ctx context.Context, userID string, limit int) ([]models.QuizResult, error)
	Stats(ctx context.Context, userID string) (*models.UserStats, error)
}

// ProgressService validates results and aggregates history on top of a ProgressStore
type ProgressService struct {
	store  ProgressStore
	logger *observability.Logger
	now    func() time.Time
}

// NewProgressService builds a ProgressService
func NewProgressService(store ProgressStore, logger *observability.Logger) *ProgressService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &ProgressService{store: store, logger: logger, now: time.Now}
}

// Percentage is correct/total as a rounded whole percentage
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

// ClampHistoryLimit applies the default for non-positive limits and caps large ones
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return config.DefaultHistoryLimit
	case limit > config.MaxHistoryLimit:
		return config.MaxHistoryLimit
	default:
		return limit
	}
}

// SaveResult validates and stores one completed quiz
func (s *ProgressService) SaveResult(ctx context.Context, userID string, input models.SaveQuizResultRequest) (result *models.QuizResult, err error) {
	ctx, span := observability.TraceProgressFunction(ctx, "save_result", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if userID == "" {
		return nil, contextutils.ErrUnauthorized
	}
	topic := contextutils.SanitizeInput(input.Topic)
	if topic == "" {
		return nil, contextutils.NewWithDetails(contextutils.ErrMissingRequired, "topic is required", nil)
	}
	if input.TotalQuestions < 1 {
		return nil, contextutils.NewWithDetails(contextutils.ErrInvalidInput, "totalQuestions must be at least 1", nil)
	}
	if input.CorrectAnswers < 0 || input.CorrectAnswers > input.TotalQuestions {
		return nil, contextutils.NewWithDetails(contextutils.ErrInvalidInput,
			fmt.Sprintf("correctAnswers must be between 0 and %d", input.TotalQuestions), nil)
	}
	complexity := ""
	if input.Complexity != "" {
		c, ok := models.ParseComplexity(input.Complexity)
		if !ok {
			return nil, contextutils.NewWithDetails(contextutils.ErrInvalidInput, fmt.Sprintf("unknown complexity %q", input.Complexity), nil)
		}
		complexity = string(c)
	}

	r := models.QuizResult{
		ID:             uuid.NewString(),
		UserID:         userID,
		Topic:          topic,
		Complexity:     complexity,
		TotalQuestions: input.TotalQuestions,
		CorrectAnswers: input.CorrectAnswers,
		Percentage:     Percentage(input.CorrectAnswers, input.TotalQuestions),
		Timestamp:      s.now().UTC(),
	}
	if err := s.store.SaveResult(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "quiz result saved", map[string]interface{}{
		"user_id":    userID,
		"topic":      topic,
		"percentage": r.Percentage,
	})
	return &r, nil
}

// History returns the user's most recent results, newest first
func (s *ProgressService) History(ctx context.Context, userID string, limit int) (result []models.QuizResult, err error) {
	limit = ClampHistoryLimit(limit)
	ctx, span := observability.TraceProgressFunction(ctx, "history",
		observability.AttributeUserID(userID),
		observability.AttributeLimit(limit),
	)
	defer observability.FinishSpan(span, &err)

	if userID == "" {
		return nil, contextutils.ErrUnauthorized
	}
	results, err := s.store.ListResults(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.QuizResult{}
	}
	return results, nil
}

// Stats aggregates the user's whole history
func (s *ProgressService) Stats(ctx context.Context, userID string) (result *models.UserStats, err error) {
	ctx, span := observability.TraceProgressFunction(ctx, "stats", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if userID == "" {
		return nil, contextutils.ErrUnauthorized
	}
	results, err := s.store.ListResults(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return ComputeStats(results), nil
}

// ComputeStats derives totals, the rounded mean percentage and the best topics
func ComputeStats(results []models.QuizResult) *models.UserStats {
	stats := &models.UserStats{TopTopics: []models.TopicScore{}}
	if len(results) == 0 {
		return stats
	}

	type topicTotals struct {
		sum   int
		count int
	}
	byTopic := make(map[string]*topicTotals)
	sum := 0
	for _, r := range results {
		stats.TotalQuestions += r.TotalQuestions
		sum += r.Percentage
		t, ok := byTopic[r.Topic]
		if !ok {
			t = &topicTotals{}
			byTopic[r.Topic] = t
		}
		t.sum += r.Percentage
		t.count++
	}
	stats.TotalQuizzes = len(results)
	stats.AverageScore = int(math.Round(float64(sum) / float64(len(results))))

	for topic, t := range byTopic {
		stats.TopTopics = append(stats.TopTopics, models.TopicScore{
			Topic:        topic,
			AverageScore: int(math.Round(float64(t.sum) / float64(t.count))),
			Quizzes:      t.count,
		})
	}
	sort.Slice(stats.TopTopics, func(i, j int) bool {
		a, b := stats.TopTopics[i], stats.TopTopics[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		return a.Topic < b.Topic
	})
	if len(stats.TopTopics) > config.TopTopicsLimit {
		stats.TopTopics = stats.TopTopics[:config.TopTopicsLimit]
	}
	return stats
}
