package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogspace/patientzero/internal/config"
	"github.com/blogspace/patientzero/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokens() *TokenManager {
	return NewTokenManager(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
	})
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := testTokens()

	access, err := tm.IssueAccess("alice")
	require.NoError(t, err)
	claims, err := tm.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	refresh, err := tm.IssueRefresh("alice")
	require.NoError(t, err)
	claims, err = tm.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	other, err := tm.IssueRefresh("alice")
	require.NoError(t, err)
	assert.NotEqual(t, refresh, other)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	tm := testTokens()

	refresh, err := tm.IssueRefresh("alice")
	require.NoError(t, err)
	_, err = tm.ParseAccess(refresh)
	require.ErrorIs(t, err, ErrInvalidToken)

	access, err := tm.IssueAccess("alice")
	require.NoError(t, err)
	_, err = tm.ParseRefresh(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpires(t *testing.T) {
	tm := testTokens()
	issued := time.Now().Add(-time.Hour)
	tm.now = func() time.Time { return issued }

	token, err := tm.IssueAccess("alice")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthMiddleware(t *testing.T) {
	tm := testTokens()
	valid, err := tm.IssueAccess("alice")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(tm), func(c *gin.Context) {
		c.String(http.StatusOK, Username(c))
	})

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + valid, http.StatusOK, "alice"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "alice"},
		{"missing", "", http.StatusUnauthorized, `"is_success":false`},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Missing access token"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "Invalid or expired"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, c.status, w.Code)
			assert.Contains(t, w.Body.String(), c.body)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	rl.cleanup(time.Now().Add(time.Minute))
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Stop()

	r := gin.New()
	r.GET("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"is_success":false`)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, logging.RequestIDFromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Body.String())
}

func TestVoteTypeValidator(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type body struct {
		VoteType string `json:"vote_type" binding:"required,votetype"`
	}
	r := gin.New()
	r.POST("/vote", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for payload, want := range map[string]int{
		`{"vote_type":"upvote"}`:   http.StatusOK,
		`{"vote_type":"downvote"}`: http.StatusOK,
		`{"vote_type":"sideways"}`: http.StatusBadRequest,
		`{}`:                       http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vote", strings.NewReader(payload)))
		assert.Equal(t, want, w.Code, payload)
	}
}
