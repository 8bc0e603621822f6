package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"quizgen/internal/models"
)

func TestRegisterValidators(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	RegisterValidators()

	router := gin.New()
	router.POST("/quiz", func(c *gin.Context) {
		var req models.QuizRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, "ok")
	})
	router.PUT("/plan", func(c *gin.Context) {
		var req models.UpgradePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/quiz", `{"topic":"Go","complexity":"Advanced"}`, http.StatusOK},
		{http.MethodPost, "/quiz", `{"topic":"Go"}`, http.StatusOK},
		{http.MethodPost, "/quiz", `{"topic":"Go","complexity":"expert"}`, http.StatusBadRequest},
		{http.MethodPost, "/quiz", `{"complexity":"beginner"}`, http.StatusBadRequest},
		{http.MethodPut, "/plan", `{"plan":"premium"}`, http.StatusOK},
		{http.MethodPut, "/plan", `{"plan":"GOLD"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.body)
	}
}
