package handlers

import (
	"net/http"

	"quizgen/internal/middleware"
	"quizgen/internal/models"
	"quizgen/internal/observability"
	"quizgen/internal/services"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler serves the caller's plan
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServiceInterface
	logger              *observability.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService services.SubscriptionServiceInterface, logger *observability.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, logger: logger}
}

// GetSubscription handles GET /api/subscription
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_subscription")
	defer observability.FinishSpan(span, nil)

	sub, err := h.subscriptionService.GetSubscription(ctx, middleware.GetUserID(c))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpgradePlan handles PUT /api/subscription
func (h *SubscriptionHandler) UpgradePlan(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "upgrade_plan")
	defer observability.FinishSpan(span, nil)

	var req models.UpgradePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}
	plan, _ := models.ParsePlan(req.Plan)

	sub, err := h.subscriptionService.UpgradePlan(ctx, middleware.GetUserID(c), plan, req.ExpiresAt)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
