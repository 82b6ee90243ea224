package models

import (
	"time"

	"github.com/lib/pq"
)

type HealthProfile struct {
	ID            uint                 `gorm:"primaryKey" json:"-"`
	Username      string               `gorm:"uniqueIndex;not null" json:"username"`
	Conditions    pq.StringArray       `gorm:"type:text[];not null;default:'{}'" json:"conditions"`
	Goals         pq.StringArray       `gorm:"type:text[];not null;default:'{}'" json:"goals"`
	CurrentStatus string               `json:"current_status"`
	History       []HealthStatusUpdate `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"history"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// HealthStatusUpdate records one change of a profile's current status.
type HealthStatusUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProfileID uint      `gorm:"not null;index" json:"-"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"date"`
}

type HealthProfileRequest struct {
	Conditions    []string `json:"conditions"`
	Goals         []string `json:"goals"`
	CurrentStatus string   `json:"current_status"`
}

type AnalyzeStatusRequest struct {
	StatusUpdate string `json:"status_update" binding:"required"`
}
