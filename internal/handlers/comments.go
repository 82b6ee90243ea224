package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/votes"
)

type CommentStore interface {
	CreateComment(ctx context.Context, postID uint, username, body string) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id uint, username string) error
	VoteComment(ctx context.Context, id uint, voter string, voteType votes.Type) (*models.Comment, votes.Tally, error)
}

type CommentHandler struct {
	store CommentStore
}

func NewCommentHandler(store CommentStore) *CommentHandler {
	return &CommentHandler{store: store}
}

// GetComments returns a post's comments, oldest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := h.store.ListComments(c.Request.Context(), postID)
	if err != nil {
		respondStoreError(c, err, "", "")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment creates a new comment (PROTECTED - requires authentication)
func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Comment body is required")
		return
	}

	comment, err := h.store.CreateComment(c.Request.Context(), postID, middleware.Username(c), input.Body)
	if err != nil {
		respondStoreError(c, err, "Post not found", "")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes a comment (PROTECTED - requires ownership)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteComment(c.Request.Context(), id, middleware.Username(c)); err != nil {
		respondStoreError(c, err, "Comment not found", "You can only delete your own comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Comment deleted successfully", "is_success": true})
}

// VoteComment toggles or switches the caller's vote on a comment.
func (h *CommentHandler) VoteComment(c *gin.Context) {
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

	comment, _, err := h.store.VoteComment(c.Request.Context(), id, middleware.Username(c), voteType)
	if err != nil {
		respondStoreError(c, err, "Comment not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":        "Vote updated successfully",
		"is_success": true,
		"comment": gin.H{
			"upvotes":   comment.Upvotes,
			"downvotes": comment.Downvotes,
			"score":     comment.Score,
		},
	})
}
