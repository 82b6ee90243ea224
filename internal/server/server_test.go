package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogspace/patientzero/internal/config"
	"github.com/blogspace/patientzero/internal/handlers"
	"github.com/blogspace/patientzero/internal/middleware"
)

type fakeDB struct {
	status string
}

func (f fakeDB) Health() map[string]string {
	return map[string]string{"status": f.status}
}

func newTestServer(t *testing.T, dbStatus string) (*Server, *middleware.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       0.001,
		RateLimitBurst:     1,
	}
	tokens := middleware.NewTokenManager(config.AuthConfig{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Minute})
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	t.Cleanup(limiter.Stop)

	h := &handlers.Handler{
		Auth:    handlers.NewAuthHandler(nil, tokens),
		Post:    handlers.NewPostHandler(nil),
		Comment: handlers.NewCommentHandler(nil),
		User:    handlers.NewUserHandler(nil),
		Health:  handlers.NewHealthHandler(nil, nil, nil),
	}
	return &Server{cfg: cfg, db: fakeDB{status: dbStatus}, handler: h, tokens: tokens, limiter: limiter}, tokens
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "up")
	r := s.RegisterRoutes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	s, _ = newTestServer(t, "down")
	w = httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "up")
	r := s.RegisterRoutes()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blogspace_http_request_duration_seconds")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s, _ := newTestServer(t, "up")
	r := s.RegisterRoutes()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/posts/1/vote"},
		{http.MethodDelete, "/api/comments/1"},
		{http.MethodPost, "/api/health/analyze"},
		{http.MethodGet, "/api/health/recommendations/alice"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestRecommendationsAreRateLimited(t *testing.T) {
	s, tokens := newTestServer(t, "up")
	r := s.RegisterRoutes()
	token, err := tokens.IssueAccess("bob")
	require.NoError(t, err)

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/health/recommendations/alice", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// bob may not read alice's recommendations, but the limiter runs first.
	assert.Equal(t, http.StatusForbidden, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}
