package services

import (
	"context"
	"time"

	"quizgen/internal/models"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"
)

// SubscriptionServiceInterface answers plan gating questions for a user
type SubscriptionServiceInterface interface {
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	UpgradePlan(ctx context.Context, userID string, plan models.Plan, expiresAt *time.Time) (*models.Subscription, error)
	CheckQuizAllowed(ctx context.Context, userID string) (*models.Subscription, error)
	RecordQuiz(ctx context.Context, userID string) error
}

// SubscriptionService applies plan limits on top of a SubscriptionStore
type SubscriptionService struct {
	store  SubscriptionStore
	logger *observability.Logger
	now    func() time.Time
}

// NewSubscriptionService builds a SubscriptionService
func NewSubscriptionService(store SubscriptionStore, logger *observability.Logger) *SubscriptionService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &SubscriptionService{store: store, logger: logger, now: time.Now}
}

func (s *SubscriptionService) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// GetSubscription returns the user's effective plan and today's usage. Users
// without a stored plan, and paid plans past their expiry, are on the free tier.
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID string) (result *models.Subscription, err error) {
	ctx, span := observability.TraceSubscriptionFunction(ctx, "get_subscription", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if userID == "" {
		return nil, contextutils.ErrUnauthorized
	}

	rec, found, err := s.store.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan := models.PlanFree
	var expiresAt *time.Time
	if found {
		if p, ok := models.ParsePlan(string(rec.Plan)); ok {
			plan = p
		}
		expiresAt = rec.ExpiresAt
		if expiresAt != nil && !expiresAt.After(s.now()) && plan != models.PlanFree {
			s.logger.Info(ctx, "subscription expired, using free plan", map[string]interface{}{
				"user_id": userID,
				"plan":    string(plan),
			})
			plan = models.PlanFree
			expiresAt = nil
		}
	}

	count, err := s.store.QuizCount(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}

	return &models.Subscription{
		UserID:       userID,
		Plan:         plan,
		Features:     plan.Features(),
		QuizCount:    count,
		LastQuizDate: rec.LastQuizDate,
		ExpiresAt:    expiresAt,
	}, nil
}

// UpgradePlan stores a new plan for the user
func (s *SubscriptionService) UpgradePlan(ctx context.Context, userID string, plan models.Plan, expiresAt *time.Time) (result *models.Subscription, err error) {
	ctx, span := observability.TraceSubscriptionFunction(ctx, "upgrade_plan", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if userID == "" {
		return nil, contextutils.ErrUnauthorized
	}
	if _, ok := models.ParsePlan(string(plan)); !ok {
		return nil, contextutils.NewWithDetails(contextutils.ErrInvalidInput, "unknown plan "+string(plan), nil)
	}
	if plan == models.PlanFree {
		expiresAt = nil
	}

	if err := s.store.SetPlan(ctx, userID, plan, expiresAt); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "plan updated", map[string]interface{}{"user_id": userID, "plan": string(plan)})
	return s.GetSubscription(ctx, userID)
}

// CheckQuizAllowed returns the subscription when another quiz fits in today's
// limit, and ErrGenerationLimitReached otherwise.
func (s *SubscriptionService) CheckQuizAllowed(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Features.AllowsQuiz(sub.QuizCount) {
		return sub, contextutils.NewWithDetails(contextutils.ErrGenerationLimitReached,
			"daily limit of the "+string(sub.Plan)+" plan is used up", nil)
	}
	return sub, nil
}

// RecordQuiz counts a successful generation against today's limit
func (s *SubscriptionService) RecordQuiz(ctx context.Context, userID string) (err error) {
	ctx, span := observability.TraceSubscriptionFunction(ctx, "record_quiz", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if userID == "" {
		return contextutils.ErrUnauthorized
	}
	_, err = s.store.IncrementQuizCount(ctx, userID, s.today())
	return err
}

// EffectiveQuestionCount caps n at the plan's questions per quiz
func EffectiveQuestionCount(plan models.Plan, n int) int {
	return plan.Features().CapQuestions(n)
}

// CanExplain reports whether the plan includes answer explanations
func CanExplain(plan models.Plan) bool {
	return plan.Features().Explanations
}
