package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/metrics"
	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/votes"
)

// SearchLimit caps full-text search results.
const SearchLimit = 10

// PostFilter narrows a post listing. Empty fields are ignored.
type PostFilter struct {
	Username string
	Category string
}

func (f PostFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Username != "" {
		db = db.Where("username = ?", f.Username)
	}
	if f.Category != "" {
		db = db.Where("(categories = ? OR ? = ANY(tags))", f.Category, f.Category)
	}
	return db
}

func (s *Store) CreatePost(ctx context.Context, username string, req models.CreatePostRequest) (*models.Post, error) {
	category, tags := req.Categories.Canonical(req.Tags)

	post := models.Post{
		Title:       req.Title,
		Description: req.Description,
		Picture:     req.Picture,
		Username:    username,
		Categories:  category,
		Tags:        pq.StringArray(tags),
		Upvotes:     pq.StringArray{},
		Downvotes:   pq.StringArray{},
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

// ListPosts returns one page of posts, newest first, with the total count
// for the filter.
func (s *Store) ListPosts(ctx context.Context, filter PostFilter, page, limit int) (*models.PostPage, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(filter.apply).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	posts := make([]models.Post, 0, limit)
	err := s.db.WithContext(ctx).
		Scopes(filter.apply).
		Order("created_date DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &models.PostPage{
		Data:       posts,
		Total:      total,
		Page:       page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// SearchPosts matches query case-insensitively against title, description,
// author and categories.
func (s *Store) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	pattern := containsPattern(query)

	posts := make([]models.Post, 0, SearchLimit)
	err := s.db.WithContext(ctx).
		Where("title ILIKE ? OR description ILIKE ? OR username ILIKE ? OR categories ILIKE ?",
			pattern, pattern, pattern, pattern).
		Order("created_date DESC, id DESC").
		Limit(SearchLimit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

// RecentPosts returns up to limit posts, newest first.
func (s *Store) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	err := s.db.WithContext(ctx).
		Order("created_date DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("load recent posts: %w", err)
	}
	return posts, nil
}

// UpdatePost applies a partial update. Only the author may edit a post.
func (s *Store) UpdatePost(ctx context.Context, id uint, username string, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Username != username {
		return nil, ErrForbidden
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Picture != nil {
		updates["picture"] = *req.Picture
	}
	if req.Categories != nil || req.Tags != nil {
		tags := []string(post.Tags)
		if req.Tags != nil {
			tags = req.Tags
		}
		var labels models.CategoryLabels
		if req.Categories != nil {
			labels = *req.Categories
		} else if post.Categories != "" {
			labels = models.CategoryLabels{post.Categories}
		}
		category, canonical := labels.Canonical(tags)
		updates["categories"] = category
		updates["tags"] = pq.StringArray(canonical)
	}
	if len(updates) == 0 {
		return post, nil
	}

	if err := s.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes the post and its comments. Only the author may delete it.
func (s *Store) DeletePost(ctx context.Context, id uint, username string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err, "post")
		}
		if post.Username != username {
			return ErrForbidden
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Delete(&post).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// VotePost applies a vote while holding a row lock on the post, so
// concurrent voters are serialised.
func (s *Store) VotePost(ctx context.Context, id uint, voter string, voteType votes.Type) (*models.Post, votes.Tally, error) {
	var (
		post  models.Post
		tally votes.Tally
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			return notFound(err, "post")
		}

		tally = votes.Apply(post.Upvotes, post.Downvotes, voter, voteType)
		post.Upvotes = pq.StringArray(tally.Upvotes)
		post.Downvotes = pq.StringArray(tally.Downvotes)
		post.Score = tally.Score

		return tx.Model(&post).Updates(map[string]any{
			"upvotes":   post.Upvotes,
			"downvotes": post.Downvotes,
			"score":     post.Score,
		}).Error
	})
	if err != nil {
		return nil, votes.Tally{}, err
	}

	recordVote(ctx, "post", id, voter, tally)
	return &post, tally, nil
}

func recordVote(ctx context.Context, entity string, id uint, voter string, tally votes.Tally) {
	added := tally.Current != votes.None
	if tally.Removed() || added {
		metrics.VotesTotal.WithLabelValues(entity, metrics.VoteAction(tally.Removed(), added)).Inc()
	}
	logging.Ctx(ctx).Debug().
		Str("entity", entity).
		Uint("id", id).
		Str("voter", voter).
		Str("previous", string(tally.Previous)).
		Str("current", string(tally.Current)).
		Int("score", tally.Score).
		Msg("Vote applied")
}
