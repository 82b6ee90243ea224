package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/recommend"
)

type HealthStore interface {
	GetHealthProfile(ctx context.Context, username string) (*models.HealthProfile, error)
	UpsertHealthProfile(ctx context.Context, username string, req models.HealthProfileRequest) (*models.HealthProfile, error)
	RecordStatus(ctx context.Context, username, status, condition string) (*models.HealthProfile, error)
}

// Recommender builds post recommendations for a health profile.
type Recommender interface {
	Recommend(ctx context.Context, profile recommend.Profile) ([]recommend.Recommendation, error)
}

type HealthHandler struct {
	store       HealthStore
	recommender Recommender
	analyzer    recommend.Analyzer
}

func NewHealthHandler(store HealthStore, recommender Recommender, analyzer recommend.Analyzer) *HealthHandler {
	return &HealthHandler{store: store, recommender: recommender, analyzer: analyzer}
}

// GetProfile returns the caller's health profile with its history.
func (h *HealthHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")
	if username != middleware.Username(c) {
		respondError(c, http.StatusForbidden, "You can only view your own health profile")
		return
	}

	profile, err := h.store.GetHealthProfile(c.Request.Context(), username)
	if err != nil {
		respondStoreError(c, err, "Health profile not found", "")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates or replaces the caller's health profile.
func (h *HealthHandler) UpsertProfile(c *gin.Context) {
	var input models.HealthProfileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.store.UpsertHealthProfile(c.Request.Context(), middleware.Username(c), input)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Health profile updated", "is_success": true, "profile": profile})
}

// GetRecommendations scores recent posts against the caller's profile. A user
// without a profile is treated as having an empty one.
func (h *HealthHandler) GetRecommendations(c *gin.Context) {
	username := c.Param("username")
	if username != middleware.Username(c) {
		respondError(c, http.StatusForbidden, "You can only view your own recommendations")
		return
	}

	stored, err := h.store.GetHealthProfile(c.Request.Context(), username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondStoreError(c, err, "", "")
		return
	}

	recs, err := h.recommender.Recommend(c.Request.Context(), recommend.ProfileFrom(stored))
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("username", username).Msg("Failed to build recommendations")
		respondError(c, http.StatusBadGateway, "Failed to generate recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "is_success": true})
}

// AnalyzeStatus reads a status update, records it and adds any newly
// detected condition to the caller's profile.
func (h *HealthHandler) AnalyzeStatus(c *gin.Context) {
	var input models.AnalyzeStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "status_update is required")
		return
	}

	ctx := c.Request.Context()
	username := middleware.Username(c)

	stored, err := h.store.GetHealthProfile(ctx, username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondStoreError(c, err, "", "")
		return
	}
	profile := recommend.ProfileFrom(stored)

	analysis, err := h.analyzer.Analyze(ctx, profile.CurrentStatus, input.StatusUpdate, profile)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("username", username).Msg("Failed to analyze status")
		respondError(c, http.StatusBadGateway, "Failed to analyze health status")
		return
	}

	var condition string
	if analysis.IsNew {
		condition = analysis.Condition
	}
	updated, err := h.store.RecordStatus(ctx, username, input.StatusUpdate, condition)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":        "Health status analyzed",
		"is_success": true,
		"analysis":   analysis,
		"profile":    updated,
	})
}
