package models

import "time"

// QuizResult is one completed quiz in a user's history
type QuizResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Topic          string    `json:"topic"`
	Complexity     string    `json:"complexity"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Percentage     int       `json:"percentage"`
	Timestamp      time.Time `json:"timestamp"`
}

// SaveQuizResultRequest is the body of POST /api/quiz-results
type SaveQuizResultRequest struct {
	Topic          string `json:"topic" binding:"required"`
	Complexity     string `json:"complexity" binding:"complexity"`
	TotalQuestions int    `json:"totalQuestions" binding:"required,min=1"`
	CorrectAnswers int    `json:"correctAnswers" binding:"min=0"`
}

// QuizResultsResponse is the body of GET /api/quiz-results
type QuizResultsResponse struct {
	Results []QuizResult `json:"results"`
}

// TopicScore is the average score for one topic
type TopicScore struct {
	Topic        string `json:"topic"`
	AverageScore int    `json:"averageScore"`
	Quizzes      int    `json:"quizzes"`
}

// UserStats aggregates a user's quiz history
type UserStats struct {
	TotalQuizzes   int          `json:"totalQuizzes"`
	TotalQuestions int          `json:"totalQuestions"`
	AverageScore   int          `json:"averageScore"`
	TopTopics      []TopicScore `json:"topTopics"`
}
