package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"quizgen/internal/models"
	contextutils "quizgen/internal/utils"
)

// quotaTTL keeps a daily counter around long enough to survive any timezone skew
const quotaTTL = 48 * time.Hour

// PlanRecord is the persisted part of a subscription
type PlanRecord struct {
	Plan         models.Plan
	ExpiresAt    *time.Time
	LastQuizDate string
}

// SubscriptionStore persists plans and daily quiz counters. day is a UTC yyyy-mm-dd date.
type SubscriptionStore interface {
	GetPlan(ctx context.Context, userID string) (PlanRecord, bool, error)
	SetPlan(ctx context.Context, userID string, plan models.Plan, expiresAt *time.Time) error
	QuizCount(ctx context.Context, userID, day string) (int, error)
	IncrementQuizCount(ctx context.Context, userID, day string) (int, error)
}

// MemorySubscriptionStore keeps subscriptions in process memory
type MemorySubscriptionStore struct {
	mu     sync.Mutex
	plans  map[string]PlanRecord
	counts map[string]int
}

// NewMemorySubscriptionStore returns an empty in-memory store
func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{
		plans:  make(map[string]PlanRecord),
		counts: make(map[string]int),
	}
}

// GetPlan returns the stored plan, if any
func (m *MemorySubscriptionStore) GetPlan(ctx context.Context, userID string) (PlanRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.plans[userID]
	return rec, ok, nil
}

// SetPlan stores plan, keeping the last quiz date
func (m *MemorySubscriptionStore) SetPlan(ctx context.Context, userID string, plan models.Plan, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.plans[userID]
	rec.Plan = plan
	rec.ExpiresAt = expiresAt
	m.plans[userID] = rec
	return nil
}

// QuizCount returns the number of quizzes recorded on day
func (m *MemorySubscriptionStore) QuizCount(ctx context.Context, userID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[quotaKey(userID, day)], nil
}

// IncrementQuizCount records one more quiz on day
func (m *MemorySubscriptionStore) IncrementQuizCount(ctx context.Context, userID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := quotaKey(userID, day)
	m.counts[key]++
	rec := m.plans[userID]
	if rec.Plan == "" {
		rec.Plan = models.PlanFree
	}
	rec.LastQuizDate = day
	m.plans[userID] = rec
	return m.counts[key], nil
}

// RedisSubscriptionStore keeps plans in a hash per user and counters in per-day keys
type RedisSubscriptionStore struct {
	rdb *goredis.Client
}

// NewRedisSubscriptionStore wraps an existing client
func NewRedisSubscriptionStore(rdb *goredis.Client) *RedisSubscriptionStore {
	return &RedisSubscriptionStore{rdb: rdb}
}

func planKey(userID string) string {
	return "quizgen:plan:" + userID
}

func quotaKey(userID, day string) string {
	return fmt.Sprintf("quizgen:quota:%s:%s", userID, day)
}

// GetPlan reads the plan hash
func (r *RedisSubscriptionStore) GetPlan(ctx context.Context, userID string) (PlanRecord, bool, error) {
	fields, err := r.rdb.HGetAll(ctx, planKey(userID)).Result()
	if err != nil {
		return PlanRecord{}, false, contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "failed to read plan: %v", err)
	}
	if len(fields) == 0 {
		return PlanRecord{}, false, nil
	}

	rec := PlanRecord{Plan: models.Plan(fields["plan"]), LastQuizDate: fields["last_quiz_date"]}
	if raw := fields["expires_at"]; raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			t := time.Unix(unix, 0).UTC()
			rec.ExpiresAt = &t
		}
	}
	return rec, true, nil
}

// SetPlan writes the plan hash, clearing any previous expiry
func (r *RedisSubscriptionStore) SetPlan(ctx context.Context, userID string, plan models.Plan, expiresAt *time.Time) error {
	key := planKey(userID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, "plan", string(plan))
		if expiresAt != nil {
			pipe.HSet(ctx, key, "expires_at", strconv.FormatInt(expiresAt.Unix(), 10))
		} else {
			pipe.HDel(ctx, key, "expires_at")
		}
		return nil
	})
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "failed to store plan: %v", err)
	}
	return nil
}

// QuizCount reads the counter for day
func (r *RedisSubscriptionStore) QuizCount(ctx context.Context, userID, day string) (int, error) {
	n, err := r.rdb.Get(ctx, quotaKey(userID, day)).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "failed to read quiz count: %v", err)
	}
	return n, nil
}

// IncrementQuizCount bumps the counter for day and refreshes its TTL
func (r *RedisSubscriptionStore) IncrementQuizCount(ctx context.Context, userID, day string) (int, error) {
	key := quotaKey(userID, day)
	var incr *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, quotaTTL)
		pipe.HSetNX(ctx, planKey(userID), "plan", string(models.PlanFree))
		pipe.HSet(ctx, planKey(userID), "last_quiz_date", day)
		return nil
	})
	if err != nil {
		return 0, contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "failed to record quiz: %v", err)
	}
	return int(incr.Val()), nil
}
