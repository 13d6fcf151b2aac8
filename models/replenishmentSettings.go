package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/config"
	"gorm.io/gorm"
)

const settingsCacheTTL = 5 * time.Minute

// ReplenishmentSettings is the per-company cadence/configuration row. The
// scheduler treats it as read-only; operators edit it through the settings
// endpoint, which also drops the redis cache entry.
type ReplenishmentSettings struct {
	ID                  uint      `gorm:"primary_key" json:"id"`
	CompanyId           string    `gorm:"uniqueIndex;size:64;not null" json:"company_id"`
	Enabled             *bool     `gorm:"not null;default:true" json:"enabled"`
	SyncIntervalMinutes int       `gorm:"not null;default:30" json:"sync_interval_minutes"`
	ActiveBranchesJSON  []byte    `gorm:"type:json" json:"active_branches"`
	UseMockGateway      *bool     `gorm:"not null;default:false" json:"use_mock_gateway"`
	ApiUrl              string    `gorm:"size:255" json:"api_url"`
	ApiKey              string    `gorm:"size:255" json:"api_key"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *ReplenishmentSettings) ActiveBranches() []string {
	return DecodeBranches(s.ActiveBranchesJSON)
}

func (s *ReplenishmentSettings) SyncInterval() time.Duration {
	minutes := s.SyncIntervalMinutes
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}

func (s *ReplenishmentSettings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s *ReplenishmentSettings) WantsMockGateway() bool {
	return s.UseMockGateway != nil && *s.UseMockGateway
}

func DecodeBranches(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var branches []string
	if err := json.Unmarshal(raw, &branches); err != nil {
		return nil
	}
	out := branches[:0]
	for _, b := range branches {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}

func EncodeBranches(branches []string) []byte {
	if branches == nil {
		branches = []string{}
	}
	b, _ := json.Marshal(branches)
	return b
}

func settingsCacheKey(companyId string) string {
	return "replen:settings:" + companyId
}

// GetReplenishmentSettings loads one company's settings, redis-cached for the
// tick so a 1-minute loop over many companies does not hammer the table.
func GetReplenishmentSettings(ctx context.Context, db *gorm.DB, companyId string) (*ReplenishmentSettings, error) {
	var cached ReplenishmentSettings
	if ok, err := config.GetRedisObject(settingsCacheKey(companyId), &cached); err == nil && ok {
		return &cached, nil
	}

	var settings ReplenishmentSettings
	if err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Take(&settings).Error; err != nil {
		return nil, err
	}
	_ = config.SetRedisObject(settingsCacheKey(companyId), &settings, settingsCacheTTL)
	return &settings, nil
}

// ListEnabledCompanyIds is re-read every tick so companies added or removed
// from configuration take effect without a restart.
func ListEnabledCompanyIds(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&ReplenishmentSettings{}).
		Where("enabled = ?", true).
		Order("company_id ASC").
		Pluck("company_id", &ids).Error
	return ids, err
}

// SaveReplenishmentSettings upserts one company's row and invalidates its
// cache entry.
func SaveReplenishmentSettings(ctx context.Context, db *gorm.DB, settings *ReplenishmentSettings) error {
	var existing ReplenishmentSettings
	err := db.WithContext(ctx).
		Where("company_id = ?", settings.CompanyId).
		Take(&existing).Error
	switch {
	case err == nil:
		settings.ID = existing.ID
		if err := db.WithContext(ctx).Save(settings).Error; err != nil {
			return err
		}
	case err == gorm.ErrRecordNotFound:
		if err := db.WithContext(ctx).Create(settings).Error; err != nil {
			return err
		}
	default:
		return err
	}
	return config.DeleteRedisKey(settingsCacheKey(settings.CompanyId))
}
