package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blogspace/patientzero/internal/models"
)

// GetHealthProfile loads the profile with its status history, oldest first.
func (s *Store) GetHealthProfile(ctx context.Context, username string) (*models.HealthProfile, error) {
	return getHealthProfile(s.db.WithContext(ctx), username)
}

func getHealthProfile(db *gorm.DB, username string) (*models.HealthProfile, error) {
	var profile models.HealthProfile
	err := db.
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("username = ?", username).
		First(&profile).Error
	if err != nil {
		return nil, notFound(err, "health profile")
	}
	return &profile, nil
}

// UpsertHealthProfile creates or replaces the caller's profile. A changed
// current status is appended to the history.
func (s *Store) UpsertHealthProfile(ctx context.Context, username string, req models.HealthProfileRequest) (*models.HealthProfile, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := loadOrNewProfile(tx, username)
		if err != nil {
			return err
		}

		profile.Conditions = pq.StringArray(nonBlank(req.Conditions))
		profile.Goals = pq.StringArray(nonBlank(req.Goals))
		return saveStatus(tx, profile, req.CurrentStatus)
	})
	if err != nil {
		return nil, err
	}
	return s.GetHealthProfile(ctx, username)
}

// RecordStatus sets the current status, appending it to the history when it
// changed, and adds condition to the profile's conditions when it is new.
func (s *Store) RecordStatus(ctx context.Context, username, status, condition string) (*models.HealthProfile, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := loadOrNewProfile(tx, username)
		if err != nil {
			return err
		}

		if condition = strings.TrimSpace(condition); condition != "" && !hasFold(profile.Conditions, condition) {
			profile.Conditions = append(profile.Conditions, condition)
		}
		return saveStatus(tx, profile, status)
	})
	if err != nil {
		return nil, err
	}
	return s.GetHealthProfile(ctx, username)
}

// loadOrNewProfile inserts an empty profile when none exists and returns the
// row locked for the rest of the transaction.
func loadOrNewProfile(tx *gorm.DB, username string) (*models.HealthProfile, error) {
	seed := models.HealthProfile{
		Username:   username,
		Conditions: pq.StringArray{},
		Goals:      pq.StringArray{},
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, fmt.Errorf("create health profile: %w", err)
	}

	var profile models.HealthProfile
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("username = ?", username).
		First(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("load health profile: %w", err)
	}
	return &profile, nil
}

func saveStatus(tx *gorm.DB, profile *models.HealthProfile, status string) error {
	changed := status != profile.CurrentStatus
	profile.CurrentStatus = status

	if profile.Conditions == nil {
		profile.Conditions = pq.StringArray{}
	}
	if profile.Goals == nil {
		profile.Goals = pq.StringArray{}
	}

	if err := tx.Omit("History").Save(profile).Error; err != nil {
		return fmt.Errorf("save health profile: %w", err)
	}
	if !changed || status == "" {
		return nil
	}

	entry := models.HealthStatusUpdate{ProfileID: profile.ID, Status: status}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func nonBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
