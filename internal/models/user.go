package models

import "time"

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	Name           string `gorm:"not null" json:"name"`
	Password       string `gorm:"not null" json:"-"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is an issued refresh token. Logging out deletes it.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	Username  string    `gorm:"index;not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Name         string `json:"name"`
	Username     string `json:"username"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

type UserStats struct {
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}
