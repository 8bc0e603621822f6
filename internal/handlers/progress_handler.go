package handlers

import (
	"net/http"
	"strconv"

	"quizgen/internal/config"
	"quizgen/internal/middleware"
	"quizgen/internal/models"
	"quizgen/internal/observability"
	"quizgen/internal/services"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves quiz history and stats
type ProgressHandler struct {
	progressService services.ProgressServiceInterface
	logger          *observability.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progressService services.ProgressServiceInterface, logger *observability.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, logger: logger}
}

// parseLimit reads the limit query parameter, applying the default when missing or invalid
func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.DefaultHistoryLimit)))
	if err != nil {
		return config.DefaultHistoryLimit
	}
	return services.ClampHistoryLimit(limit)
}

// SaveResult handles POST /api/quiz-results
func (h *ProgressHandler) SaveResult(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "save_quiz_result")
	defer observability.FinishSpan(span, nil)

	var req models.SaveQuizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result, err := h.progressService.SaveResult(ctx, middleware.GetUserID(c), req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListResults handles GET /api/quiz-results
func (h *ProgressHandler) ListResults(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_quiz_results")
	defer observability.FinishSpan(span, nil)

	results, err := h.progressService.History(ctx, middleware.GetUserID(c), parseLimit(c))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.QuizResultsResponse{Results: results})
}

// GetStats handles GET /api/stats
func (h *ProgressHandler) GetStats(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_stats")
	defer observability.FinishSpan(span, nil)

	stats, err := h.progressService.Stats(ctx, middleware.GetUserID(c))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
