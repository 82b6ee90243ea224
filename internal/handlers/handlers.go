package handlers

import (
	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/recommend"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	User    *UserHandler
	Health  *HealthHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(store *database.Store, tokens *middleware.TokenManager, recommender Recommender, analyzer recommend.Analyzer) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(store, tokens),
		Post:    NewPostHandler(store),
		Comment: NewCommentHandler(store),
		User:    NewUserHandler(store),
		Health:  NewHealthHandler(store, recommender, analyzer),
	}
}
