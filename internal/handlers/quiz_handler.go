package handlers

import (
	"net/http"

	"quizgen/internal/middleware"
	"quizgen/internal/models"
	"quizgen/internal/observability"
	"quizgen/internal/services"
	contextutils "quizgen/internal/utils"

	"github.com/gin-gonic/gin"
)

// QuizHandler serves quiz generation and answer explanations
type QuizHandler struct {
	quizService         services.QuizServiceInterface
	explanationService  services.ExplanationServiceInterface
	subscriptionService services.SubscriptionServiceInterface
	logger              *observability.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(
	quizService services.QuizServiceInterface,
	explanationService services.ExplanationServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
	logger *observability.Logger,
) *QuizHandler {
	return &QuizHandler{
		quizService:         quizService,
		explanationService:  explanationService,
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// GenerateQuiz handles POST /api/generate-quiz. Authenticated callers are held to
// their plan's daily limit and question cap; anonymous callers are not gated.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "generate_quiz")
	defer observability.FinishSpan(span, nil)

	var req models.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	if userID != "" {
		sub, err := h.subscriptionService.CheckQuizAllowed(ctx, userID)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		if capped := services.EffectiveQuestionCount(sub.Plan, req.Count()); capped != req.Count() {
			h.logger.Info(ctx, "question count capped by plan", map[string]interface{}{
				"user_id":   userID,
				"plan":      string(sub.Plan),
				"requested": req.Count(),
				"capped":    capped,
			})
			req.NumQuestions = models.QuestionCount(capped)
		}
	}

	questions, err := h.quizService.GenerateQuiz(ctx, req)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	if userID != "" {
		if err := h.subscriptionService.RecordQuiz(ctx, userID); err != nil {
			h.logger.Error(ctx, "failed to record quiz usage", err, map[string]interface{}{"user_id": userID})
		}
	}

	c.JSON(http.StatusOK, models.QuizResponse{Questions: questions})
}

// ExplainAnswer handles POST /api/explain-answer. Authenticated callers need a
// plan that includes explanations.
func (h *QuizHandler) ExplainAnswer(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "explain_answer")
	defer observability.FinishSpan(span, nil)

	var req models.ExplanationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	if userID := middleware.GetUserID(c); userID != "" {
		sub, err := h.subscriptionService.GetSubscription(ctx, userID)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		if !services.CanExplain(sub.Plan) {
			HandleAppError(c, contextutils.NewWithDetails(contextutils.ErrForbidden,
				"the "+string(sub.Plan)+" plan does not include explanations", nil))
			return
		}
	}

	explanation, err := h.explanationService.ExplainAnswer(ctx, req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ExplanationResponse{Explanation: explanation})
}
