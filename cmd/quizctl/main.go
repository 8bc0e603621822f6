// Package main provides quizctl, the command-line companion of the quiz generation backend.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"quizgen/cmd/quizctl/commands"
	"quizgen/internal/config"
	"quizgen/internal/database"
	"quizgen/internal/di"
	"quizgen/internal/observability"
	"quizgen/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Keep the terminal output clean and avoid exporter connection errors
	if os.Getenv("SERVER_LOG_LEVEL") == "" {
		cfg.Server.LogLevel = "error"
	}
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "quizctl", cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// The container and database are only built by the commands that need them
	var sc *di.ServiceContainer
	getContainer := func() (*di.ServiceContainer, error) {
		if sc != nil {
			return sc, nil
		}
		built := di.NewServiceContainer(cfg, logger)
		if err := built.Initialize(ctx); err != nil {
			return nil, err
		}
		sc = built
		return sc, nil
	}

	dbManager := database.NewManager(logger)
	var db *sql.DB
	openDB := func(ctx context.Context) (*sql.DB, error) {
		if db != nil {
			return db, nil
		}
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("database.url is not configured")
		}
		opened, err := dbManager.InitDBWithoutMigrations(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		db = opened
		return db, nil
	}

	rootCmd := &cobra.Command{
		Use:   "quizctl",
		Short: "Quiz generation backend command-line tool",
		Long: `Quiz generation backend command-line tool

Generate quizzes and explanations with the configured model, manage the
quiz results schema, and issue development tokens.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.GenerateCommand(func() (services.QuizServiceInterface, error) {
		c, err := getContainer()
		if err != nil {
			return nil, err
		}
		return c.GetQuizService()
	}))
	rootCmd.AddCommand(commands.ExplainCommand(func() (services.ExplanationServiceInterface, error) {
		c, err := getContainer()
		if err != nil {
			return nil, err
		}
		return c.GetExplanationService()
	}))
	rootCmd.AddCommand(commands.DatabaseCommands(dbManager, openDB, cfg.Database.URL))
	rootCmd.AddCommand(commands.TokenCommand(func() string { return cfg.Auth.JWTSecret }))
	rootCmd.AddCommand(commands.VersionCommand())

	err = rootCmd.ExecuteContext(ctx)

	if sc != nil {
		_ = sc.Shutdown(ctx)
	}
	if db != nil {
		_ = db.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
