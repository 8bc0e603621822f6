// Package di provides the dependency injection container that wires providers, stores and services.
package di

import (
	"context"
	"database/sql"
	"sync"

	"quizgen/internal/config"
	"quizgen/internal/database"
	"quizgen/internal/llm"
	"quizgen/internal/observability"
	"quizgen/internal/prompts"
	"quizgen/internal/services"
	contextutils "quizgen/internal/utils"

	goredis "github.com/redis/go-redis/v9"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetQuizService() (services.QuizServiceInterface, error)
	GetExplanationService() (services.ExplanationServiceInterface, error)
	GetSubscriptionService() (services.SubscriptionServiceInterface, error)
	GetProgressService() (services.ProgressServiceInterface, error)
	GetProvider() llm.Provider
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Option customizes a ServiceContainer before Initialize
type Option func(*ServiceContainer)

// WithProvider injects a completion provider instead of building one from config
func WithProvider(p llm.Provider) Option {
	return func(sc *ServiceContainer) { sc.provider = p }
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	provider      llm.Provider
	dbManager     *database.Manager
	db            *sql.DB
	redis         *goredis.Client
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger, opts ...Option) *ServiceContainer {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	sc := &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Initialize builds the provider, the stores and all services. Redis and Postgres
// are used when configured; otherwise state is kept in memory.
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.provider == nil {
		provider, err := llm.NewProvider(ctx, sc.cfg.AI, sc.logger)
		if err != nil {
			return contextutils.WrapError(err, "failed to create completion provider")
		}
		sc.provider = provider
	}
	if _, ok := sc.provider.(*llm.InstrumentedProvider); !ok {
		sc.provider = llm.WithInstrumentation(sc.provider, sc.cfg.AI.RequestTimeout, sc.logger)
	}

	subscriptionStore, err := sc.initSubscriptionStore(ctx)
	if err != nil {
		_ = sc.cleanup(ctx)
		return err
	}
	progressStore, err := sc.initProgressStore(ctx)
	if err != nil {
		_ = sc.cleanup(ctx)
		return err
	}

	if err := sc.initializeServices(subscriptionStore, progressStore); err != nil {
		_ = sc.cleanup(ctx)
		return err
	}
	return nil
}

func (sc *ServiceContainer) initSubscriptionStore(ctx context.Context) (services.SubscriptionStore, error) {
	if sc.cfg.Redis.Addr == "" {
		sc.logger.Info(ctx, "Redis not configured, subscriptions kept in memory", nil)
		return services.NewMemorySubscriptionStore(), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     sc.cfg.Redis.Addr,
		Password: sc.cfg.Redis.Password,
		DB:       sc.cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "failed to connect to redis at %s: %w", sc.cfg.Redis.Addr, err)
	}
	sc.redis = rdb
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return rdb.Close()
	})
	sc.logger.Info(ctx, "Subscriptions stored in redis", map[string]interface{}{"addr": sc.cfg.Redis.Addr})
	return services.NewRedisSubscriptionStore(rdb), nil
}

func (sc *ServiceContainer) initProgressStore(ctx context.Context) (services.ProgressStore, error) {
	if sc.cfg.Database.URL == "" {
		sc.logger.Info(ctx, "Database not configured, quiz results kept in memory", nil)
		return services.NewMemoryProgressStore(), nil
	}

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDB(ctx, sc.cfg.Database)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})
	return services.NewPostgresProgressStore(db), nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(subscriptionStore services.SubscriptionStore, progressStore services.ProgressStore) error {
	pm, err := prompts.NewManager()
	if err != nil {
		return contextutils.WrapError(err, "failed to load prompt templates")
	}

	metrics, err := observability.NewQuizMetrics(nil)
	if err != nil {
		return err
	}

	sc.services["quiz"] = services.NewQuizService(sc.provider, pm, sc.cfg.AI, metrics, sc.logger)
	sc.services["explanation"] = services.NewExplanationService(sc.provider, pm, metrics, sc.logger)
	sc.services["subscription"] = services.NewSubscriptionService(subscriptionStore, sc.logger)
	sc.services["progress"] = services.NewProgressService(progressStore, sc.logger)
	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetQuizService returns the quiz generation service
func (sc *ServiceContainer) GetQuizService() (services.QuizServiceInterface, error) {
	return GetServiceAs[services.QuizServiceInterface](sc, "quiz")
}

// GetExplanationService returns the explanation service
func (sc *ServiceContainer) GetExplanationService() (services.ExplanationServiceInterface, error) {
	return GetServiceAs[services.ExplanationServiceInterface](sc, "explanation")
}

// GetSubscriptionService returns the subscription service
func (sc *ServiceContainer) GetSubscriptionService() (services.SubscriptionServiceInterface, error) {
	return GetServiceAs[services.SubscriptionServiceInterface](sc, "subscription")
}

// GetProgressService returns the progress service
func (sc *ServiceContainer) GetProgressService() (services.ProgressServiceInterface, error) {
	return GetServiceAs[services.ProgressServiceInterface](sc, "progress")
}

// GetProvider returns the instrumented completion provider
func (sc *ServiceContainer) GetProvider() llm.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.provider
}

// GetDatabase returns the database instance, or nil when results are kept in memory
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown closes every connection opened by Initialize
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs shutdown functions in reverse order of initialization
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err, nil)
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}
