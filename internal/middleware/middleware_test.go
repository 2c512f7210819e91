package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/patroliq-backend-go/internal/auth"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=\"/ping?x=1\"")
	assert.Contains(t, out, "status=418")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRequireAuth(t *testing.T) {
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "s", Issuer: "patroliq", Expiration: time.Hour})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/write", RequireAuth(svc), RequireRole(auth.RoleTrainer, auth.RoleAdmin), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Subject)
	})

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/write", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	analyst, err := svc.GenerateToken("viewer", []string{auth.RoleAnalyst})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+analyst)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	trainer, err := svc.GenerateToken("ci", []string{auth.RoleTrainer})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+trainer)
	rec = serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ci", rec.Body.String())
}

func TestMetricsMiddleware(t *testing.T) {
	m := observability.NewMetrics()

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/v1/runs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/runs/abc", nil))
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `patroliq_http_requests_total{method="GET",route="/api/v1/runs/:id",status="200"} 1`)
}
