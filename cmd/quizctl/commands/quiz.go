// Package commands provides the quizctl subcommands
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"quizgen/internal/models"
	"quizgen/internal/services"
	contextutils "quizgen/internal/utils"

	"github.com/spf13/cobra"
)

// QuizServiceFactory builds the quiz service on first use so commands that never
// call the model do not need provider credentials.
type QuizServiceFactory func() (services.QuizServiceInterface, error)

// ExplanationServiceFactory builds the explanation service on first use
type ExplanationServiceFactory func() (services.ExplanationServiceInterface, error)

// GenerateCommand returns the generate command, which prints a quiz as JSON
func GenerateCommand(quizService QuizServiceFactory) *cobra.Command {
	var (
		topic      string
		complexity string
		count      int
		score      float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz and print it as JSON",
		Long: `Generate a multiple-choice quiz with the configured model.

The quiz goes through the same retry, repair and validation steps as
POST /api/generate-quiz. Pass --score to adapt the difficulty to a previous result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := quizService()
			if err != nil {
				return err
			}

			req := models.QuizRequest{
				Topic:        topic,
				Complexity:   complexity,
				NumQuestions: models.ClampQuestionCount(&count),
			}
			if cmd.Flags().Changed("score") {
				req.PreviousScore = &score
			}

			questions, err := svc.GenerateQuiz(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.QuizResponse{Questions: questions})
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Quiz topic (required)")
	cmd.Flags().StringVarP(&complexity, "complexity", "c", string(models.ComplexityIntermediate), "beginner, intermediate or advanced")
	cmd.Flags().IntVarP(&count, "count", "n", models.DefaultQuestionCount, "Number of questions")
	cmd.Flags().Float64Var(&score, "score", 0, "Previous quiz percentage used to adapt difficulty")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

// ExplainCommand returns the explain command, which prints an explanation of an answer
func ExplainCommand(explanationService ExplanationServiceFactory) *cobra.Command {
	var req models.ExplanationRequest

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain why an answer is correct or incorrect",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := explanationService()
			if err != nil {
				return err
			}

			explanation, err := svc.ExplainAnswer(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), explanation)
			return err
		},
	}

	cmd.Flags().StringVarP(&req.Question, "question", "q", "", "Question text (required)")
	cmd.Flags().StringVarP(&req.SelectedOption, "selected", "s", "", "Option the learner chose (required)")
	cmd.Flags().StringVarP(&req.CorrectOption, "correct", "a", "", "Correct option (required)")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("selected")
	_ = cmd.MarkFlagRequired("correct")

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return contextutils.WrapError(err, "failed to write output")
	}
	return nil
}
