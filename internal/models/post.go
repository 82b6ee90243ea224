package models

import (
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null;uniqueIndex:idx_posts_title_username" json:"title"`
	Description string `gorm:"not null" json:"description"`
	Picture     string `json:"picture,omitempty"`
	Username    string `gorm:"not null;index;uniqueIndex:idx_posts_title_username" json:"username"`

	// Categories is the legacy single label. Additional labels live in Tags.
	Categories string         `gorm:"index" json:"categories,omitempty"`
	Tags       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`

	// Voter sets. Score is derived from them on every vote and never adjusted directly.
	Upvotes   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"upvotes"`
	Downvotes pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"downvotes"`
	Score     int            `gorm:"not null;default:0" json:"score"`

	CreatedDate time.Time `gorm:"autoCreateTime;index" json:"created_date"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title       string         `json:"title" binding:"required,max=300"`
	Description string         `json:"description" binding:"required"`
	Picture     string         `json:"picture"`
	Categories  CategoryLabels `json:"categories"`
	Tags        []string       `json:"tags"`
}

// UpdatePostRequest holds a partial update; nil fields are left untouched.
type UpdatePostRequest struct {
	Title       *string         `json:"title" binding:"omitempty,max=300"`
	Description *string         `json:"description"`
	Picture     *string         `json:"picture"`
	Categories  *CategoryLabels `json:"categories"`
	Tags        []string        `json:"tags"`
}

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required,votetype"`
}

// PostPage is one page of a post listing.
type PostPage struct {
	Data       []Post `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}
