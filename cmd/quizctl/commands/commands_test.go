package commands

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizgen/internal/config"
	"quizgen/internal/llm"
	"quizgen/internal/middleware"
	"quizgen/internal/models"
	"quizgen/internal/prompts"
	"quizgen/internal/services"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func quizFactory(provider llm.Provider) QuizServiceFactory {
	return func() (services.QuizServiceInterface, error) {
		return services.NewQuizService(provider, prompts.MustNewManager(), config.AIConfig{MaxAttempts: 3}, nil, nil), nil
	}
}

func TestGenerateCommand(t *testing.T) {
	questions := []models.QuizQuestion{
		{Question: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "4"},
		{Question: "3+3?", Options: []string{"5", "6", "7", "8"}, CorrectAnswer: "6"},
	}
	data, err := json.Marshal(questions)
	require.NoError(t, err)
	mock := llm.NewMockProvider(llm.MockResponse{Text: string(data)})

	out, err := execute(t, GenerateCommand(quizFactory(mock)), "--topic", "Arithmetic", "-n", "2", "--score", "90")
	require.NoError(t, err)

	var resp models.QuizResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, questions, resp.Questions)

	// A high previous score moves intermediate up to advanced
	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "at advanced level")
}

func TestGenerateCommand_RequiresTopic(t *testing.T) {
	called := false
	factory := func() (services.QuizServiceInterface, error) {
		called = true
		return nil, errors.New("unused")
	}
	_, err := execute(t, GenerateCommand(factory))
	assert.Error(t, err)
	assert.False(t, called)
}

func TestGenerateCommand_FactoryError(t *testing.T) {
	factory := func() (services.QuizServiceInterface, error) {
		return nil, errors.New("no api key")
	}
	_, err := execute(t, GenerateCommand(factory), "--topic", "Go")
	assert.EqualError(t, err, "no api key")
}

func TestExplainCommand(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Four is the sum."})
	factory := func() (services.ExplanationServiceInterface, error) {
		return services.NewExplanationService(mock, prompts.MustNewManager(), nil, nil), nil
	}

	out, err := execute(t, ExplainCommand(factory), "-q", "2+2?", "-s", "5", "-a", "4")
	require.NoError(t, err)
	assert.Equal(t, "Four is the sum.\n", out)
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, TokenCommand(func() string { return "s3cret" }), "--user", "user-7")
	require.NoError(t, err)

	userID, err := middleware.ParseToken("s3cret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)

	_, err = execute(t, TokenCommand(func() string { return "" }), "--user", "user-7")
	assert.Error(t, err)
}

type fakeMigrator struct {
	up        int
	downSteps []int
}

func (f *fakeMigrator) RunMigrations(context.Context, *sql.DB) error {
	f.up++
	return nil
}

func (f *fakeMigrator) MigrateDown(_ context.Context, _ *sql.DB, steps int) error {
	f.downSteps = append(f.downSteps, steps)
	return nil
}

func TestDatabaseCommands_Migrate(t *testing.T) {
	openDB := func(context.Context) (*sql.DB, error) { return nil, nil }

	m := &fakeMigrator{}
	out, err := execute(t, DatabaseCommands(m, openDB, ""), "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, 1, m.up)
	assert.Contains(t, out, "Migrations applied")

	out, err = execute(t, DatabaseCommands(m, openDB, ""), "migrate", "down", "--steps", "0")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, m.downSteps)
	assert.Contains(t, out, "all migrations")

	_, err = execute(t, DatabaseCommands(m, openDB, ""), "migrate", "down", "--steps", "-2")
	assert.Error(t, err)
	assert.Equal(t, []int{0}, m.downSteps)
}

func TestDatabaseCommands_OpenError(t *testing.T) {
	openDB := func(context.Context) (*sql.DB, error) { return nil, errors.New("database.url is not configured") }
	m := &fakeMigrator{}

	_, err := execute(t, DatabaseCommands(m, openDB, ""), "migrate", "up")
	assert.Error(t, err)
	assert.Zero(t, m.up)
}

func TestMaskDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://quiz:xxxxx@db:5432/quizgen", maskDatabaseURL("postgres://quiz:hunter2@db:5432/quizgen"))
	assert.Equal(t, "host=db dbname=quizgen", maskDatabaseURL("host=db dbname=quizgen"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, VersionCommand())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "version dev"))
}
