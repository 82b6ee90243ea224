package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/models"
)

// AuthStore is the persistence AuthHandler needs.
type AuthStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	SaveRefreshToken(ctx context.Context, username, token string) error
	RefreshTokenExists(ctx context.Context, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

type AuthHandler struct {
	store  AuthStore
	tokens *middleware.TokenManager
}

func NewAuthHandler(store AuthStore, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *gin.Context) {
	var input models.SignupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Username, name and a password of at least 6 characters are required")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}

	user := models.User{
		Username: input.Username,
		Name:     input.Name,
		Password: string(hashedPassword),
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, database.ErrDuplicateUsername) {
			respondError(c, http.StatusBadRequest, "Username already taken")
			return
		}
		respondStoreError(c, err, "", "")
		return
	}

	logging.Ctx(c.Request.Context()).Info().Str("username", user.Username).Msg("User signed up")
	c.JSON(http.StatusOK, gin.H{"msg": "Signup successful", "is_success": true})
}

// Login checks the password and issues an access and a refresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), input.Username)
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusBadRequest, "Invalid username or password")
		return
	}
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid username or password")
		return
	}

	access, err := h.tokens.IssueAccess(user.Username)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	refresh, err := h.tokens.IssueRefresh(user.Username)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	if err := h.store.SaveRefreshToken(c.Request.Context(), user.Username, refresh); err != nil {
		respondStoreError(c, err, "", "")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Name:         user.Name,
		Username:     user.Username,
	})
}

// Token exchanges a known refresh token for a new access token.
func (h *AuthHandler) Token(c *gin.Context) {
	var input models.TokenRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusUnauthorized, "Refresh token is missing")
		return
	}

	known, err := h.store.RefreshTokenExists(c.Request.Context(), input.Token)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	if !known {
		respondError(c, http.StatusNotFound, "Refresh token is not valid")
		return
	}

	claims, err := h.tokens.ParseRefresh(input.Token)
	if err != nil {
		respondError(c, http.StatusForbidden, "Invalid refresh token")
		return
	}

	access, err := h.tokens.IssueAccess(claims.Username)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Logout forgets the refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var input models.TokenRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Refresh token is missing")
		return
	}

	if err := h.store.DeleteRefreshToken(c.Request.Context(), input.Token); err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.Status(http.StatusNoContent)
}
