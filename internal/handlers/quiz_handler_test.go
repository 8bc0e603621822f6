package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizgen/internal/llm"
	"quizgen/internal/models"
)

func TestGenerateQuiz_Success(t *testing.T) {
	s := newTestServer(t)
	s.provider.AddResponse(llm.MockResponse{Text: "```json\n" + quizJSON(t, 2) + "\n```"})

	w := s.do(t, http.MethodPost, "/api/generate-quiz", map[string]interface{}{
		"topic": "Binary Search", "complexity": "beginner", "numQuestions": 2,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body models.QuizResponse
	decodeBody(t, w, &body)
	assert.Len(t, body.Questions, 2)
	assert.Equal(t, "Binary", body.Questions[0].CorrectAnswer)
}

func TestGenerateQuiz_NumQuestionsClamping(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`0`, 1},
		{`-5`, 1},
		{`"abc"`, 10},
		{`250`, 100},
		{`"12abc"`, 12},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s := newTestServer(t)
			s.provider.AddResponse(llm.MockResponse{Text: quizJSON(t, tt.want)})

			w := s.do(t, http.MethodPost, "/api/generate-quiz", `{"topic":"Go","numQuestions":`+tt.raw+`}`, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var body models.QuizResponse
			decodeBody(t, w, &body)
			assert.Len(t, body.Questions, tt.want)
		})
	}
}

func TestGenerateQuiz_BadRequest(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{`{"complexity":"beginner"}`, `{"topic":"Go","complexity":"expert"}`, `not json`} {
		w := s.do(t, http.MethodPost, "/api/generate-quiz", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "INVALID_INPUT", errorBody(t, w)["code"])
	}
	assert.Equal(t, 0, s.provider.CallCount())
}

func TestGenerateQuiz_InsufficientCredits(t *testing.T) {
	s := newTestServer(t)
	s.provider.AddResponse(llm.MockResponse{Err: &llm.ProviderError{Provider: "openrouter", StatusCode: http.StatusPaymentRequired, Err: errors.New("Payment Required")}})

	w := s.do(t, http.MethodPost, "/api/generate-quiz", map[string]interface{}{"topic": "Go", "numQuestions": 2}, "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	body := errorBody(t, w)
	assert.Equal(t, "INSUFFICIENT_CREDITS", body["code"])
	assert.Equal(t, "Insufficient API credits", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.Equal(t, 1, s.provider.CallCount())
}

func TestGenerateQuiz_GenerationFailed(t *testing.T) {
	s := newTestServer(t)
	s.provider.Fallback = func(llm.Request) (string, error) { return "no json for you", nil }

	w := s.do(t, http.MethodPost, "/api/generate-quiz", map[string]interface{}{"topic": "Go", "numQuestions": 2}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := errorBody(t, w)
	assert.Equal(t, "Failed to generate quiz after 3 attempts", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.Equal(t, 3, s.provider.CallsWithPrefix("Generate exactly"))
}

func TestGenerateQuiz_PlanGating(t *testing.T) {
	s := newTestServer(t)
	s.provider.Fallback = func(req llm.Request) (string, error) {
		prompt := req.Messages[0].Content
		switch {
		case strings.HasPrefix(prompt, "Generate exactly 5 "):
			return quizJSON(t, 5), nil
		default:
			return "", errors.New("unexpected prompt: " + prompt)
		}
	}

	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/generate-quiz", map[string]interface{}{"topic": "Go", "numQuestions": 10}, "user-1")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body models.QuizResponse
		decodeBody(t, w, &body)
		assert.Len(t, body.Questions, 5)
	}

	w := s.do(t, http.MethodPost, "/api/generate-quiz", map[string]interface{}{"topic": "Go", "numQuestions": 10}, "user-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "GENERATION_LIMIT_REACHED", errorBody(t, w)["code"])
	assert.Equal(t, 3, s.provider.CallCount())

	// Anonymous callers are not gated
	s.provider.AddResponse(llm.MockResponse{Text: quizJSON(t, 10)})
	w = s.do(t, http.MethodPost, "/api/generate-quiz", map[string]interface{}{"topic": "Go", "numQuestions": 10}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExplainAnswer(t *testing.T) {
	req := map[string]string{
		"question":       "What is the time complexity of binary search?",
		"selectedOption": "O(n)",
		"correctOption":  "O(log n)",
	}

	t.Run("anonymous", func(t *testing.T) {
		s := newTestServer(t)
		s.provider.AddResponse(llm.MockResponse{Text: "It halves the range each step."})

		w := s.do(t, http.MethodPost, "/api/explain-answer", req, "")
		require.Equal(t, http.StatusOK, w.Code)

		var body models.ExplanationResponse
		decodeBody(t, w, &body)
		assert.Equal(t, "It halves the range each step.", body.Explanation)
	})

	t.Run("free plan is forbidden", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPost, "/api/explain-answer", req, "user-1")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorBody(t, w)["code"])
		assert.Equal(t, 0, s.provider.CallCount())
	})

	t.Run("premium plan", func(t *testing.T) {
		s := newTestServer(t)
		s.provider.AddResponse(llm.MockResponse{Text: "Because."})

		w := s.do(t, http.MethodPut, "/api/subscription", map[string]string{"plan": "PREMIUM"}, "user-1")
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/api/explain-answer", req, "user-1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPost, "/api/explain-answer", map[string]string{"question": "Q"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		s := newTestServer(t)
		s.provider.AddResponse(llm.MockResponse{Err: errors.New("connection reset")})
		w := s.do(t, http.MethodPost, "/api/explain-answer", req, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "EXPLANATION_FAILED", errorBody(t, w)["code"])
	})
}
