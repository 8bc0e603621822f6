// Package prompts renders the embedded prompt templates sent to the model.
package prompts

import (
	"embed"
	"strings"
	"text/template"

	contextutils "quizgen/internal/utils"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Template names as constants
const (
	QuizGenerationTemplate   = "quiz_generation.tmpl"
	JSONRepairTemplate       = "json_repair.tmpl"
	ExplainCorrectTemplate   = "explain_correct.tmpl"
	ExplainIncorrectTemplate = "explain_incorrect.tmpl"
)

// Data holds the values templates may reference
type Data struct {
	// Generation
	Topic      string
	Complexity string
	Count      int

	// Repair
	Malformed string

	// Explanation
	Question       string
	SelectedOption string
	CorrectOption  string
}

// Manager renders prompt templates
type Manager struct {
	templates *template.Template
}

// NewManager parses the embedded templates
func NewManager() (*Manager, error) {
	templates, err := template.New("").Option("missingkey=error").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to parse prompt templates: %w", err)
	}
	return &Manager{templates: templates}, nil
}

// MustNewManager is NewManager for package-level initialization; the templates are compiled in
func MustNewManager() *Manager {
	m, err := NewManager()
	if err != nil {
		panic(err)
	}
	return m
}

// Render renders the named template with data
func (m *Manager) Render(name string, data Data) (string, error) {
	var buf strings.Builder
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// QuizGeneration renders the generation prompt
func (m *Manager) QuizGeneration(topic, complexity string, count int) (string, error) {
	return m.Render(QuizGenerationTemplate, Data{Topic: topic, Complexity: complexity, Count: count})
}

// JSONRepair renders the model-assisted repair prompt for malformed output
func (m *Manager) JSONRepair(malformed string, count int) (string, error) {
	return m.Render(JSONRepairTemplate, Data{Malformed: malformed, Count: count})
}

// Explanation renders the correct or incorrect explanation prompt
func (m *Manager) Explanation(question, selected, correct string) (string, error) {
	name := ExplainIncorrectTemplate
	if selected == correct {
		name = ExplainCorrectTemplate
	}
	return m.Render(name, Data{Question: question, SelectedOption: selected, CorrectOption: correct})
}
