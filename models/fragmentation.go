package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// FragmentationSample is one point of the per-branch shortage index series.
// Append-only; trend reports read it, nothing updates it.
type FragmentationSample struct {
	ID              uint      `gorm:"primary_key" json:"id"`
	CompanyId       string    `gorm:"index;size:64;not null" json:"company_id"`
	Branch          string    `gorm:"index;size:20;not null" json:"branch"`
	Score           float64   `gorm:"not null" json:"score"`
	BelowMinCount   int       `gorm:"not null;default:0" json:"below_min_count"`
	ActiveLocations int       `gorm:"not null;default:0" json:"active_locations"`
	TakenAt         time.Time `gorm:"index;not null" json:"taken_at"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateFragmentationSample(ctx context.Context, db *gorm.DB, sample *FragmentationSample) error {
	return db.WithContext(ctx).Create(sample).Error
}

func ListRecentSamples(ctx context.Context, db *gorm.DB, companyId string, branch string, limit int) ([]FragmentationSample, error) {
	if limit <= 0 {
		limit = 50
	}
	var samples []FragmentationSample
	err := db.WithContext(ctx).
		Where("company_id = ? AND branch = ?", companyId, branch).
		Order("taken_at DESC").
		Limit(limit).
		Find(&samples).Error
	return samples, err
}
