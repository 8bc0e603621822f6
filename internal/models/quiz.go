// Package models defines the request, response and domain types of the quiz generation backend.
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Complexity is a difficulty tier. Tiers are ordered beginner < intermediate < advanced.
type Complexity string

// Complexity tiers
const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

var complexityOrder = []Complexity{ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced}

// ParseComplexity normalizes s to a known tier. Empty input yields intermediate.
func ParseComplexity(s string) (Complexity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ComplexityIntermediate, true
	}
	for _, c := range complexityOrder {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// IsValid reports whether c is one of the known tiers
func (c Complexity) IsValid() bool {
	return c.index() >= 0
}

func (c Complexity) index() int {
	for i, tier := range complexityOrder {
		if tier == c {
			return i
		}
	}
	return -1
}

// Harder returns the next tier up, staying at the top tier
func (c Complexity) Harder() Complexity {
	i := c.index()
	if i < 0 || i == len(complexityOrder)-1 {
		return c
	}
	return complexityOrder[i+1]
}

// Easier returns the next tier down, staying at the bottom tier
func (c Complexity) Easier() Complexity {
	i := c.index()
	if i <= 0 {
		return c
	}
	return complexityOrder[i-1]
}

// QuizQuestion is a single multiple-choice question as exchanged with clients and the model
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasAnswerOption reports whether the correct answer is exactly one of the options
func (q QuizQuestion) HasAnswerOption() bool {
	matches := 0
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			matches++
		}
	}
	return matches == 1
}

// Question count bounds
const (
	DefaultQuestionCount = 10
	MinQuestionCount     = 1
	MaxQuestionCount     = 100
)

// QuestionCount is the requested number of questions. It accepts JSON numbers or
// numeric strings, falls back to DefaultQuestionCount for anything else, and is
// always clamped to [MinQuestionCount, MaxQuestionCount] once decoded.
type QuestionCount int

// UnmarshalJSON decodes leniently; it never fails so a bad count cannot reject a request
func (n *QuestionCount) UnmarshalJSON(data []byte) error {
	*n = ClampQuestionCount(parseLeadingInt(data))
	return nil
}

// ClampQuestionCount bounds a parsed count. A nil value selects the default.
func ClampQuestionCount(v *int) QuestionCount {
	if v == nil {
		return DefaultQuestionCount
	}
	switch {
	case *v < MinQuestionCount:
		return MinQuestionCount
	case *v > MaxQuestionCount:
		return MaxQuestionCount
	}
	return QuestionCount(*v)
}

// parseLeadingInt returns the integer prefix of a JSON number or string, or nil when there is none
func parseLeadingInt(data []byte) *int {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		// Saturate before conversion so huge values still clamp to the maximum
		if f > math.MaxInt32 {
			f = math.MaxInt32
		} else if f < math.MinInt32 {
			f = math.MinInt32
		}
		v := int(math.Trunc(f))
		return &v
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return leadingInt(s)
}

func leadingInt(s string) *int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return nil
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		// Overflow: only the sign matters for clamping
		v = MaxQuestionCount + 1
		if s[0] == '-' {
			v = MinQuestionCount - 1
		}
	}
	return &v
}

// QuizRequest is the body of POST /api/generate-quiz
type QuizRequest struct {
	Topic        string        `json:"topic" binding:"required"`
	Complexity   string        `json:"complexity" binding:"complexity"`
	NumQuestions QuestionCount `json:"numQuestions"`
	// PreviousScore is the percentage scored on the previous quiz, if any
	PreviousScore *float64 `json:"score,omitempty" binding:"omitempty,min=0,max=100"`
}

// Count returns the effective question count, applying the default when the field was absent
func (r QuizRequest) Count() int {
	if r.NumQuestions == 0 {
		return DefaultQuestionCount
	}
	return int(r.NumQuestions)
}

// QuizResponse is the success body of POST /api/generate-quiz
type QuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

// GenerationAttempt records what happened on one pass of the generation loop
type GenerationAttempt struct {
	Number   int
	Raw      string
	Repaired string
	Err      error
}

// ExplanationRequest is the body of POST /api/explain-answer
type ExplanationRequest struct {
	Question       string `json:"question" binding:"required"`
	SelectedOption string `json:"selectedOption" binding:"required"`
	CorrectOption  string `json:"correctOption" binding:"required"`
}

// IsCorrect reports whether the learner picked the correct option
func (r ExplanationRequest) IsCorrect() bool {
	return r.SelectedOption == r.CorrectOption
}

// ExplanationResponse is the success body of POST /api/explain-answer
type ExplanationResponse struct {
	Explanation string `json:"explanation"`
}
