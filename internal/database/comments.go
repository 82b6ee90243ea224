package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/votes"
)

func (s *Store) CreateComment(ctx context.Context, postID uint, username, body string) (*models.Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:    postID,
		Username:  username,
		Body:      body,
		Upvotes:   pq.StringArray{},
		Downvotes: pq.StringArray{},
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// ListComments returns a post's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Store) DeleteComment(ctx context.Context, id uint, username string) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return notFound(err, "comment")
	}
	if comment.Username != username {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// VoteComment is VotePost for comments.
func (s *Store) VoteComment(ctx context.Context, id uint, voter string, voteType votes.Type) (*models.Comment, votes.Tally, error) {
	var (
		comment models.Comment
		tally   votes.Tally
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&comment, id).Error; err != nil {
			return notFound(err, "comment")
		}

		tally = votes.Apply(comment.Upvotes, comment.Downvotes, voter, voteType)
		comment.Upvotes = pq.StringArray(tally.Upvotes)
		comment.Downvotes = pq.StringArray(tally.Downvotes)
		comment.Score = tally.Score

		return tx.Model(&comment).Updates(map[string]any{
			"upvotes":   comment.Upvotes,
			"downvotes": comment.Downvotes,
			"score":     comment.Score,
		}).Error
	})
	if err != nil {
		return nil, votes.Tally{}, err
	}

	recordVote(ctx, "comment", id, voter, tally)
	return &comment, tally, nil
}
