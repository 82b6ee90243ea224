package models

import (
	"time"

	"github.com/lib/pq"
)

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Username string `gorm:"not null;index" json:"username"`
	Body     string `gorm:"not null" json:"body"`

	Upvotes   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"upvotes"`
	Downvotes pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"downvotes"`
	Score     int            `gorm:"not null;default:0" json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}
