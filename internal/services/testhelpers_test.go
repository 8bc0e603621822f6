package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"quizgen/internal/config"
	"quizgen/internal/llm"
	"quizgen/internal/models"
	"quizgen/internal/prompts"
)

const generationPrefix = "Generate exactly"

func quizJSON(t *testing.T, topic string, n int) string {
	t.Helper()
	qs := make([]models.QuizQuestion, n)
	for i := range qs {
		qs[i] = models.QuizQuestion{
			Question:      fmt.Sprintf("%s question %d?", topic, i+1),
			Options:       []string{"O(1)", "O(log n)", "O(n)", "O(n log n)"},
			CorrectAnswer: "O(log n)",
		}
	}
	data, err := json.Marshal(qs)
	require.NoError(t, err)
	return string(data)
}

func newTestQuizService(mock *llm.MockProvider) *QuizService {
	cfg := config.AIConfig{MaxAttempts: config.DefaultMaxGenerationAttempts, MaxTokens: config.DefaultModelMaxTokens}
	return NewQuizService(mock, prompts.MustNewManager(), cfg, nil, nil)
}

func scoreOf(v float64) *float64 {
	return &v
}
