package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"quizgen/internal/models"
	contextutils "quizgen/internal/utils"
)

// OptionsPerQuestion is the number of choices every question must offer
const OptionsPerQuestion = 4

var questionItemSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []string{"question", "options", "correctAnswer"},
	"additionalProperties": true,
	"properties": map[string]interface{}{
		"question": map[string]interface{}{"type": "string", "minLength": 1},
		"options": map[string]interface{}{
			"type":        "array",
			"minItems":    OptionsPerQuestion,
			"maxItems":    OptionsPerQuestion,
			"uniqueItems": true,
			"items":       map[string]interface{}{"type": "string", "minLength": 1},
		},
		"correctAnswer": map[string]interface{}{"type": "string", "minLength": 1},
	},
}

// quizSchema describes an array of exactly n questions
func quizSchema(n int) map[string]interface{} {
	return map[string]interface{}{
		"type":     "array",
		"minItems": n,
		"maxItems": n,
		"items":    questionItemSchema,
	}
}

// ValidateQuiz checks raw against the quiz schema for n questions and that every
// correct answer is one of its options.
func ValidateQuiz(raw json.RawMessage, n int) ([]models.QuizQuestion, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(quizSchema(n)),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidQuizFormat, "schema validation error: %v", err)
	}
	if !result.Valid() {
		var messages []string
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return nil, contextutils.NewWithDetails(contextutils.ErrInvalidQuizFormat, strings.Join(messages, "; "), nil)
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidQuizFormat, "failed to decode questions: %v", err)
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, contextutils.NewWithDetails(contextutils.ErrInvalidQuizFormat, fmt.Sprintf("question %d is blank", i), nil)
		}
		if !q.HasAnswerOption() {
			return nil, contextutils.NewWithDetails(contextutils.ErrInvalidQuizFormat,
				fmt.Sprintf("question %d: correctAnswer %q is not one of its options", i, q.CorrectAnswer), nil)
		}
	}
	return questions, nil
}
