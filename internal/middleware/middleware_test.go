package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func limitedRouter(l Limiter) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RateLimit(l, zap.NewNop(), metrics.New()))
	router.POST("/recipe/create", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return router
}

func TestLocalLimiterRejectsAfterLimit(t *testing.T) {
	router := limitedRouter(NewLocalLimiter(RateLimitConfig{Window: time.Minute, Limit: 2}))

	first := perform(router, http.MethodPost, "/recipe/create", nil)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusCreated, perform(router, http.MethodPost, "/recipe/create", nil).Code)

	rejected := perform(router, http.MethodPost, "/recipe/create", nil)
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "0", rejected.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", rejected.Header().Get("Retry-After"))
	assert.Contains(t, rejected.Body.String(), `"error":"rate limit exceeded"`)
}

func TestLocalLimiterKeysAreIndependent(t *testing.T) {
	l := NewLocalLimiter(RateLimitConfig{Window: time.Minute, Limit: 1})
	ctx := context.Background()

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLocalLimiterRefillsAndForgetsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(RateLimitConfig{Window: time.Minute, Limit: 1})
	l.now = func() time.Time { return now }
	ctx := context.Background()

	d, _ := l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	assert.WithinDuration(t, now.Add(time.Minute), d.Reset, time.Millisecond)

	now = now.Add(2 * time.Minute)
	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed)
	assert.NotContains(t, l.visitors, "a")
}

func TestRateLimitFailsOpen(t *testing.T) {
	router := limitedRouter(failingLimiter{})

	w := perform(router, http.MethodPost, "/recipe/create", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}

func TestRedisLimiter(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	l := NewRedisLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: "rate_limit:test"})
	fixed := time.Date(2025, 1, 1, 12, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, d.Allowed, "request %d", i+1)
		assert.Equal(t, time.Date(2025, 1, 1, 12, 1, 0, 0, time.UTC), d.Reset)
	}

	ttl, err := client.TTL(ctx, "rate_limit:test:10.0.0.1:1735732800").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	d, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(RequestID(), Recovery(zap.New(core), metrics.New()))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(router, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "panic recovered", entry.Message)
	assert.Equal(t, w.Header().Get(RequestIDHeader), entry.ContextMap()["request_id"])
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	generated := perform(router, http.MethodGet, "/", nil)
	_, err := uuid.Parse(generated.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Equal(t, generated.Header().Get(RequestIDHeader), generated.Body.String())

	given := uuid.New().String()
	kept := perform(router, http.MethodGet, "/", map[string]string{RequestIDHeader: given})
	assert.Equal(t, given, kept.Header().Get(RequestIDHeader))

	replaced := perform(router, http.MethodGet, "/", map[string]string{RequestIDHeader: "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", replaced.Header().Get(RequestIDHeader))
}

func TestLoggerLevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(RequestID(), Logger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("db gone"))
		c.Status(http.StatusInternalServerError)
	})

	perform(router, http.MethodGet, "/ok", nil)
	perform(router, http.MethodGet, "/missing", nil)
	perform(router, http.MethodGet, "/broken", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.Contains(t, entries[2].ContextMap()["errors"], "db gone")
}

func TestCORS(t *testing.T) {
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }

	open := gin.New()
	open.Use(CORS([]string{"*"}))
	open.GET("/kitchen", handler)
	w := perform(open, http.MethodGet, "/kitchen", map[string]string{"Origin": "http://anywhere.test"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	strict := gin.New()
	strict.Use(CORS([]string{"https://recipes.example"}))
	strict.GET("/kitchen", handler)

	w = perform(strict, http.MethodGet, "/kitchen", map[string]string{"Origin": "https://recipes.example"})
	assert.Equal(t, "https://recipes.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(strict, http.MethodGet, "/kitchen", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(strict, http.MethodOptions, "/kitchen", map[string]string{
		"Origin":                        "https://recipes.example",
		"Access-Control-Request-Method": "PATCH",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
