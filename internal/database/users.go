package database

import (
	"context"
	"fmt"

	"github.com/blogspace/patientzero/internal/models"
)

// CreateUser stores a user whose password is already hashed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// UpdateUser applies a partial profile update.
func (s *Store) UpdateUser(ctx context.Context, username string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.ProfilePicture != nil {
		updates["profile_picture"] = *req.ProfilePicture
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, username)
}

// UserStats counts the user's posts and comments and sums the upvotes on
// their posts.
func (s *Store) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	if _, err := s.GetUser(ctx, username); err != nil {
		return nil, err
	}

	var stats models.UserStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Post{}).Where("username = ?", username).Count(&stats.Posts).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if err := db.Model(&models.Comment{}).Where("username = ?", username).Count(&stats.Comments).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	err := db.Model(&models.Post{}).
		Select("COALESCE(SUM(cardinality(upvotes)), 0)").
		Where("username = ?", username).
		Scan(&stats.Likes).Error
	if err != nil {
		return nil, fmt.Errorf("sum likes: %w", err)
	}
	return &stats, nil
}

func (s *Store) SaveRefreshToken(ctx context.Context, username, token string) error {
	rt := models.RefreshToken{Token: token, Username: username}
	if err := s.db.WithContext(ctx).Create(&rt).Error; err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *Store) RefreshTokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("token = ?", token).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("look up refresh token: %w", err)
	}
	return count > 0, nil
}

// DeleteRefreshToken forgets a refresh token. Unknown tokens are not an error.
func (s *Store) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
