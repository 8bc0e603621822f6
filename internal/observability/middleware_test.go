package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	contextutils "quizgen/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := gin.New()
	r.Use(GinMiddleware("test-service", otelgin.WithTracerProvider(tp)), ErrorAttributes())
	return r, recorder
}

func TestErrorAttributes_RecordsAppError(t *testing.T) {
	r, recorder := newTracedRouter(t)
	r.POST("/api/generate-quiz", func(c *gin.Context) {
		_ = c.Error(contextutils.ErrInsufficientCredits)
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "credits"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-quiz", nil))
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]interface{}{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "INSUFFICIENT_CREDITS", attrs["error.code"])
	assert.Equal(t, "error", attrs["error.severity"])
}

func TestErrorAttributes_LeavesSuccessAlone(t *testing.T) {
	r, recorder := newTracedRouter(t)
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestDetermineErrorSeverity(t *testing.T) {
	assert.Equal(t, "error", determineErrorSeverity(500, nil))
	assert.Equal(t, "warn", determineErrorSeverity(404, nil))
	assert.Equal(t, "info", determineErrorSeverity(200, nil))
	assert.Equal(t, "info", determineErrorSeverity(409, []*gin.Error{{Err: contextutils.ErrGenerationLimitReached}}))
}
