package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/recommend"
)

func TestHealthProfileSelfOnly(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/health/profile/alice", "alice", "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/health/profile/alice", "bob", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/health/profile/alice", "", "").Code)

	w := env.do(t, http.MethodPost, "/api/health/profile", "alice",
		`{"conditions":["asthma"],"goals":["run 5k"],"current_status":"tired"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		IsSuccess bool                 `json:"is_success"`
		Profile   models.HealthProfile `json:"profile"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.IsSuccess)
	assert.Equal(t, "alice", resp.Profile.Username)
	assert.Len(t, resp.Profile.History, 1)

	w = env.do(t, http.MethodGet, "/api/health/profile/alice", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run 5k")
}

func TestRecommendations(t *testing.T) {
	env := newTestEnv(t)
	env.recs.recs = []recommend.Recommendation{{
		Post:              models.Post{ID: 7, Title: "Meal prep"},
		RelevanceScore:    60,
		Reasoning:         "Matches nutrition interest",
		MatchedCategories: []string{"Nutrition"},
		IsNutritious:      true,
	}}

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/health/recommendations/alice", "bob", "").Code)

	// No stored profile: recommendations run against an empty one.
	w := env.do(t, http.MethodGet, "/api/health/recommendations/alice", "alice", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, recommend.Profile{}, env.recs.got)

	var resp struct {
		Recommendations []struct {
			ID                int      `json:"id"`
			RelevanceScore    int      `json:"relevance_score"`
			MatchedCategories []string `json:"matched_categories"`
			IsNutritious      bool     `json:"is_nutritious"`
		} `json:"recommendations"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, 7, resp.Recommendations[0].ID)
	assert.Equal(t, 60, resp.Recommendations[0].RelevanceScore)
	assert.True(t, resp.Recommendations[0].IsNutritious)

	env.do(t, http.MethodPost, "/api/health/profile", "alice", `{"goals":["eat better"],"current_status":"hungry"}`)
	env.do(t, http.MethodGet, "/api/health/recommendations/alice", "alice", "")
	assert.Equal(t, []string{"eat better"}, env.recs.got.Goals)
	assert.Equal(t, "hungry", env.recs.got.CurrentStatus)

	env.recs.err = errors.New("classifier down")
	w = env.do(t, http.MethodGet, "/api/health/recommendations/alice", "alice", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "classifier down")
}

func TestAnalyzeStatus(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/health/profile", "alice", `{"current_status":"fine"}`)

	env.analyzer.result = recommend.Analysis{Condition: "migraine", IsNew: true, Analysis: "New headaches."}
	w := env.do(t, http.MethodPost, "/api/health/analyze", "alice", `{"status_update":"headaches all week"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "fine", env.analyzer.previous)

	profile := env.store.profiles["alice"]
	assert.Equal(t, "headaches all week", profile.CurrentStatus)
	assert.Equal(t, []string{"migraine"}, []string(profile.Conditions))
	assert.Len(t, profile.History, 2)
	assert.Contains(t, w.Body.String(), `"condition":"migraine"`)

	env.analyzer.result = recommend.Analysis{Condition: "migraine", IsNew: false}
	env.do(t, http.MethodPost, "/api/health/analyze", "alice", `{"status_update":"still headaches"}`)
	assert.Len(t, env.store.profiles["alice"].Conditions, 1)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/health/analyze", "alice", `{}`).Code)

	env.analyzer.err = errors.New("llm down")
	w = env.do(t, http.MethodPost, "/api/health/analyze", "alice", `{"status_update":"x"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "still headaches", env.store.profiles["alice"].CurrentStatus)
}

func TestAnalyzeStatusFallsBackToStaticAnalyzer(t *testing.T) {
	env := newTestEnv(t)
	env.analyzer.err = errors.New("llm down")

	health := NewHealthHandler(env.store, env.recs, recommend.FallbackAnalyzer{
		Primary:   env.analyzer,
		Secondary: recommend.StaticAnalyzer{},
	})
	r := gin.New()
	r.POST("/api/health/analyze", middleware.AuthMiddleware(env.tokens), health.AnalyzeStatus)
	env.router = r

	w := env.do(t, http.MethodPost, "/api/health/analyze", "alice", `{"status_update":"struggling with my diet"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Analysis recommend.Analysis `json:"analysis"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Analysis.NeedsNutrition)

	profile := env.store.profiles["alice"]
	require.NotNil(t, profile)
	assert.Equal(t, "struggling with my diet", profile.CurrentStatus)
	assert.Empty(t, profile.Conditions)
}
