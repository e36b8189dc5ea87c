package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/fincore-erp/gl_budget_engine/internal/middleware"
)

func rateLimitedRouter(t *testing.T, format string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rate, err := limiter.NewRateFromFormatted(format)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimit_StampsHeaders(t *testing.T) {
	router := rateLimitedRouter(t, "5-M")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	router := rateLimitedRouter(t, "1-M")

	first := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(second, req)

	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
}
