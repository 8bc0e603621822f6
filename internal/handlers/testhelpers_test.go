package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"quizgen/internal/config"
	"quizgen/internal/llm"
	"quizgen/internal/middleware"
	"quizgen/internal/models"
	"quizgen/internal/prompts"
	"quizgen/internal/services"
)

const testJWTSecret = "handler-test-secret"

type testServer struct {
	router        *gin.Engine
	provider      *llm.MockProvider
	subscriptions *services.SubscriptionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}},
		AI:     config.AIConfig{MaxAttempts: 3, MaxTokens: config.DefaultModelMaxTokens},
		Auth:   config.AuthConfig{JWTSecret: testJWTSecret},
	}
	provider := llm.NewMockProvider()
	pm := prompts.MustNewManager()
	subscriptions := services.NewSubscriptionService(services.NewMemorySubscriptionStore(), nil)

	router := NewRouter(cfg,
		services.NewQuizService(provider, pm, cfg.AI, nil, nil),
		services.NewExplanationService(provider, pm, nil, nil),
		subscriptions,
		services.NewProgressService(services.NewMemoryProgressStore(), nil),
		nil,
	)
	return &testServer{router: router, provider: provider, subscriptions: subscriptions}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := middleware.IssueToken(testJWTSecret, userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func quizJSON(t *testing.T, n int) string {
	t.Helper()
	qs := make([]models.QuizQuestion, n)
	for i := range qs {
		qs[i] = models.QuizQuestion{
			Question:      "Which search halves the range each step?",
			Options:       []string{"Binary", "Linear", "Jump", "Interpolation"},
			CorrectAnswer: "Binary",
		}
	}
	data, err := json.Marshal(qs)
	require.NoError(t, err)
	return string(data)
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	decodeBody(t, w, &body)
	return body
}
