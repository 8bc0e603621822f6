package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"quizgen/internal/config"
	"quizgen/internal/middleware"
	"quizgen/internal/observability"
	"quizgen/internal/services"
	"quizgen/internal/version"
)

// HealthMessage is the plain text body of GET /health
const HealthMessage = "Backend is healthy"

// NewRouter creates the gin engine with all middleware and routes
func NewRouter(
	cfg *config.Config,
	quizService services.QuizServiceInterface,
	explanationService services.ExplanationServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
	progressService services.ProgressServiceInterface,
	logger *observability.Logger,
) *gin.Engine {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	middleware.RegisterValidators()

	router := gin.New()
	router.Use(middleware.ErrorRecovery(logger))
	router.Use(middleware.RequestID())
	router.Use(requestLogger(logger))

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, HealthMessage)
	})

	// OpenTelemetry tracing and context propagation, then error attributes on the server span
	router.Use(observability.GinMiddleware(cfg.OpenTelemetry.ServiceName))
	router.Use(observability.ErrorAttributes())

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.Use(middleware.OptionalAuth(cfg.Auth.JWTSecret, logger))

	quizHandler := NewQuizHandler(quizService, explanationService, subscriptionService, logger)
	subscriptionHandler := NewSubscriptionHandler(subscriptionService, logger)
	progressHandler := NewProgressHandler(progressService, logger)

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   cfg.OpenTelemetry.ServiceName,
			"version":   version.Version,
			"commit":    version.Commit,
			"buildTime": version.BuildTime,
		})
	})

	api := router.Group("/api")
	{
		api.POST("/generate-quiz", quizHandler.GenerateQuiz)
		api.POST("/explain-answer", quizHandler.ExplainAnswer)

		authed := api.Group("", middleware.RequireAuth())
		authed.GET("/subscription", subscriptionHandler.GetSubscription)
		authed.PUT("/subscription", subscriptionHandler.UpgradePlan)
		authed.POST("/quiz-results", progressHandler.SaveResult)
		authed.GET("/quiz-results", progressHandler.ListResults)
		authed.GET("/stats", progressHandler.GetStats)
	}

	router.NoRoute(func(c *gin.Context) {
		StandardizeHTTPError(c, http.StatusNotFound, "Not found", c.Request.Method+" "+c.Request.URL.Path)
	})

	return router
}

// corsConfig allows the configured origins, or every origin when none or "*" is configured
func corsConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	return corsConfig
}

// requestLogger logs each request through the observability logger at a level matching its status
func requestLogger(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	}
}
