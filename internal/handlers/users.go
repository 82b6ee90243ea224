package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/models"
)

type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, username string, req models.UpdateUserRequest) (*models.User, error)
	UserStats(ctx context.Context, username string) (*models.UserStats, error)
}

type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// GetUserProfile returns a user's public profile.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondStoreError(c, err, "User not found", "")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserStats returns post and comment counts and upvotes received.
func (h *UserHandler) GetUserStats(c *gin.Context) {
	stats, err := h.store.UserStats(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondStoreError(c, err, "User not found", "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateUserProfile updates the caller's own profile (PROTECTED)
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	username := c.Param("username")
	if username != middleware.Username(c) {
		respondError(c, http.StatusForbidden, "You can only update your own profile")
		return
	}

	var input models.UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.UpdateUser(c.Request.Context(), username, input)
	if err != nil {
		respondStoreError(c, err, "User not found", "")
		return
	}
	c.JSON(http.StatusOK, user)
}
