package models

import (
	"strings"
	"time"
)

// Plan is a subscription tier
type Plan string

// Subscription tiers
const (
	PlanFree    Plan = "FREE"
	PlanBasic   Plan = "BASIC"
	PlanPremium Plan = "PREMIUM"
)

// Unlimited marks a limit that does not apply
const Unlimited = -1

// PlanFeatures lists what a tier allows
type PlanFeatures struct {
	QuizLimit        int  `json:"quizLimit"`
	QuestionsPerQuiz int  `json:"questionsPerQuiz"`
	Analytics        bool `json:"analytics"`
	Explanations     bool `json:"explanations"`
	Topics           int  `json:"topics"`
}

var planFeatures = map[Plan]PlanFeatures{
	PlanFree: {
		QuizLimit:        3,
		QuestionsPerQuiz: 5,
		Analytics:        false,
		Explanations:     false,
		Topics:           5,
	},
	PlanBasic: {
		QuizLimit:        10,
		QuestionsPerQuiz: 10,
		Analytics:        true,
		Explanations:     false,
		Topics:           10,
	},
	PlanPremium: {
		QuizLimit:        Unlimited,
		QuestionsPerQuiz: 20,
		Analytics:        true,
		Explanations:     true,
		Topics:           Unlimited,
	},
}

// ParsePlan normalizes s to a known plan
func ParsePlan(s string) (Plan, bool) {
	p := Plan(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := planFeatures[p]
	return p, ok
}

// Features returns the features of p; unknown plans get the free tier
func (p Plan) Features() PlanFeatures {
	if f, ok := planFeatures[p]; ok {
		return f
	}
	return planFeatures[PlanFree]
}

// AllowsQuiz reports whether another quiz fits in today's limit
func (f PlanFeatures) AllowsQuiz(usedToday int) bool {
	return f.QuizLimit == Unlimited || usedToday < f.QuizLimit
}

// CapQuestions limits a requested count to the plan maximum
func (f PlanFeatures) CapQuestions(n int) int {
	if f.QuestionsPerQuiz != Unlimited && n > f.QuestionsPerQuiz {
		return f.QuestionsPerQuiz
	}
	return n
}

// Subscription is a user's current plan and today's usage
type Subscription struct {
	UserID       string       `json:"userId"`
	Plan         Plan         `json:"plan"`
	Features     PlanFeatures `json:"features"`
	QuizCount    int          `json:"quizCount"`
	LastQuizDate string       `json:"lastQuizDate,omitempty"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
}

// RemainingQuizzes returns the quizzes left today, or Unlimited
func (s Subscription) RemainingQuizzes() int {
	if s.Features.QuizLimit == Unlimited {
		return Unlimited
	}
	if left := s.Features.QuizLimit - s.QuizCount; left > 0 {
		return left
	}
	return 0
}

// UpgradePlanRequest is the body of PUT /api/subscription
type UpgradePlanRequest struct {
	Plan      string     `json:"plan" binding:"required,plan"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
