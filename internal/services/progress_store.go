package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"quizgen/internal/models"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// ProgressStore persists completed quiz results
type ProgressStore interface {
	SaveResult(ctx context.Context, result models.QuizResult) error
	// ListResults returns a user's results newest first; limit <= 0 means all
	ListResults(ctx context.Context, userID string, limit int) ([]models.QuizResult, error)
}

// MemoryProgressStore keeps results in process memory
type MemoryProgressStore struct {
	mu      sync.RWMutex
	results map[string][]models.QuizResult
}

// NewMemoryProgressStore returns an empty in-memory store
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{results: make(map[string][]models.QuizResult)}
}

// SaveResult appends result to its user's history
func (m *MemoryProgressStore) SaveResult(ctx context.Context, result models.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.UserID] = append(m.results[result.UserID], result)
	return nil
}

// ListResults returns a copy of the user's history, newest first
func (m *MemoryProgressStore) ListResults(ctx context.Context, userID string, limit int) ([]models.QuizResult, error) {
	m.mu.RLock()
	out := append([]models.QuizResult(nil), m.results[userID]...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PostgresProgressStore stores results in the quiz_results table
type PostgresProgressStore struct {
	db *sql.DB
}

// NewPostgresProgressStore wraps a migrated database pool
func NewPostgresProgressStore(db *sql.DB) *PostgresProgressStore {
	return &PostgresProgressStore{db: db}
}

// SaveResult inserts one result row
func (p *PostgresProgressStore) SaveResult(ctx context.Context, result models.QuizResult) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "save_quiz_result", attribute.String("db.table", "quiz_results"))
	defer observability.FinishSpan(span, &err)

	query := `
		INSERT INTO quiz_results (id, user_id, topic, complexity, total_questions, correct_answers, percentage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := p.db.ExecContext(ctx, query,
		result.ID, result.UserID, result.Topic, result.Complexity,
		result.TotalQuestions, result.CorrectAnswers, result.Percentage, result.Timestamp,
	); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to insert quiz result: %v", err)
	}
	return nil
}

// ListResults reads a user's results newest first
func (p *PostgresProgressStore) ListResults(ctx context.Context, userID string, limit int) (result []models.QuizResult, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "list_quiz_results",
		attribute.String("db.table", "quiz_results"),
		observability.AttributeLimit(limit),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, user_id, topic, complexity, total_questions, correct_answers, percentage, created_at
		FROM quiz_results
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to query quiz results: %v", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to close rows: %v", closeErr)
		}
	}()

	var results []models.QuizResult
	for rows.Next() {
		var r models.QuizResult
		if err := rows.Scan(&r.ID, &r.UserID, &r.Topic, &r.Complexity,
			&r.TotalQuestions, &r.CorrectAnswers, &r.Percentage, &r.Timestamp); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan quiz result: %v", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate quiz results: %v", err)
	}
	return results, nil
}
