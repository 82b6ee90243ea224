package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/votes"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PostStore interface {
	CreatePost(ctx context.Context, username string, req models.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, filter database.PostFilter, page, limit int) (*models.PostPage, error)
	SearchPosts(ctx context.Context, query string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id uint, username string, req models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id uint, username string) error
	VotePost(ctx context.Context, id uint, voter string, voteType votes.Type) (*models.Post, votes.Tally, error)
}

type PostHandler struct {
	store PostStore
}

func NewPostHandler(store PostStore) *PostHandler {
	return &PostHandler{store: store}
}

// GetPosts returns one page of posts, optionally filtered by author or category.
func (h *PostHandler) GetPosts(c *gin.Context) {
	filter := database.PostFilter{
		Username: strings.TrimSpace(c.Query("username")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	page := queryInt(c, "page", 1, 1, math.MaxInt32)
	limit := queryInt(c, "limit", defaultPageSize, 1, maxPageSize)

	result, err := h.store.ListPosts(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchPosts matches the query against title, description, author and category.
func (h *PostHandler) SearchPosts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respondError(c, http.StatusBadRequest, "Search query is required")
		return
	}

	posts, err := h.store.SearchPosts(c.Request.Context(), query)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := h.store.GetPost(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Post not found", "")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Title and description are required")
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), middleware.Username(c), input)
	if errors.Is(err, database.ErrDuplicateTitle) {
		c.JSON(http.StatusBadRequest, gin.H{
			"msg":        "You already have a post with this title",
			"is_success": false,
			"field":      "title",
		})
		return
	}
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post (PROTECTED - requires ownership)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input models.UpdatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.store.UpdatePost(c.Request.Context(), id, middleware.Username(c), input)
	if errors.Is(err, database.ErrDuplicateTitle) {
		c.JSON(http.StatusBadRequest, gin.H{
			"msg":        "You already have a post with this title",
			"is_success": false,
			"field":      "title",
		})
		return
	}
	if err != nil {
		respondStoreError(c, err, "Post not found", "You can only edit your own posts")
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and its comments (PROTECTED - requires ownership)
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeletePost(c.Request.Context(), id, middleware.Username(c)); err != nil {
		respondStoreError(c, err, "Post not found", "You can only delete your own posts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post deleted successfully", "is_success": true})
}

// VotePost toggles or switches the caller's vote on a post.
func (h *PostHandler) VotePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "vote_type must be upvote or downvote")
		return
	}
	voteType, _ := votes.ParseType(input.VoteType)

	post, tally, err := h.store.VotePost(c.Request.Context(), id, middleware.Username(c), voteType)
	if err != nil {
		respondStoreError(c, err, "Post not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":        voteMessage(tally),
		"is_success": true,
		"data":       post,
	})
}

func voteMessage(t votes.Tally) string {
	if t.Removed() {
		return "Vote removed successfully"
	}
	return "Vote updated successfully"
}
