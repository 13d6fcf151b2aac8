package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// SyncLogEntry is the append-only audit trail of every scheduler action.
// The loop also reads it back: cadence is "time since last successful fetch",
// so a restart never re-triggers a flood of syncs.
type SyncLogEntry struct {
	ID            uint      `gorm:"primary_key" json:"id"`
	CompanyId     string    `gorm:"index:idx_sync_log_cadence,priority:1;size:64;not null" json:"company_id"`
	Branch        string    `gorm:"size:20" json:"branch"`
	Action        string    `gorm:"index:idx_sync_log_cadence,priority:2;size:20;not null" json:"action"`
	Status        string    `gorm:"index:idx_sync_log_cadence,priority:3;size:10;not null" json:"status"`
	RecordCount   int       `gorm:"not null;default:0" json:"record_count"`
	ErrorText     string    `gorm:"type:text" json:"error_text"`
	DurationMs    int64     `gorm:"not null;default:0" json:"duration_ms"`
	TriggeredBy   string    `gorm:"size:20" json:"triggered_by"`
	CorrelationId string    `gorm:"size:64" json:"correlation_id"`
	StartedAt     time.Time `gorm:"not null" json:"started_at"`
	FinishedAt    time.Time `gorm:"index:idx_sync_log_cadence,priority:4;not null" json:"finished_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateSyncLogEntry(ctx context.Context, db *gorm.DB, entry *SyncLogEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

// LastSuccessfulFetch returns when the company last completed a stock fetch,
// or nil when it never has.
func LastSuccessfulFetch(ctx context.Context, db *gorm.DB, companyId string) (*time.Time, error) {
	var entry SyncLogEntry
	err := db.WithContext(ctx).
		Where("company_id = ? AND action = ? AND status = ?", companyId, SyncActionStockFetch, SyncStatusSuccess).
		Order("finished_at DESC").
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry.FinishedAt, nil
}

func ListRecentSyncLog(ctx context.Context, db *gorm.DB, companyId string, limit int) ([]SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []SyncLogEntry
	err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("finished_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
