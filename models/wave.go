package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReplenishmentWave is one dispatched batch of replenishment work.
// Immutable after insert except status, timestamps and the gateway response.
type ReplenishmentWave struct {
	ID             uint       `gorm:"primary_key" json:"id"`
	CompanyId      string     `gorm:"uniqueIndex:idx_wave_number,priority:1;size:64;not null" json:"company_id"`
	Branch         string     `gorm:"index;size:20;not null" json:"branch"`
	WaveNumber     string     `gorm:"uniqueIndex:idx_wave_number,priority:2;size:40;not null" json:"wave_number"`
	Status         string     `gorm:"index;size:20;not null" json:"status"`
	TriggeredBy    string     `gorm:"size:20;not null" json:"triggered_by"`
	TotalTasks     int        `gorm:"not null;default:0" json:"total_tasks"`
	CompletedTasks int        `gorm:"not null;default:0" json:"completed_tasks"`
	AckReference   string     `gorm:"size:128" json:"ack_reference"`
	ErrorText      string     `gorm:"type:text" json:"error_text"`
	GeneratedAt    time.Time  `gorm:"not null" json:"generated_at"`
	DispatchedAt   *time.Time `gorm:"index" json:"dispatched_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Tasks []ReplenishmentTask `gorm:"foreignKey:WaveId;constraint:OnDelete:CASCADE" json:"tasks"`
}

// ReplenishmentTask is one line of a wave. Order within the wave (Sequence)
// is what the pickers walk, so it is persisted, not recomputed.
type ReplenishmentTask struct {
	ID             uint            `gorm:"primary_key" json:"id"`
	WaveId         uint            `gorm:"index;not null" json:"wave_id"`
	Sequence       int             `gorm:"not null" json:"sequence"`
	LocationCode   string          `gorm:"size:50;not null" json:"location_code"`
	ProductCode    string          `gorm:"size:60;not null" json:"product_code"`
	Description    string          `gorm:"size:255" json:"description"`
	CurrentQty     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_qty"`
	MinQty         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_qty"`
	QtyToReplenish decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty_to_replenish"`
	AbcClass       string          `gorm:"size:1" json:"abc_class"`
	Priority       int             `gorm:"not null;default:3" json:"priority"`
	Status         string          `gorm:"size:20;not null" json:"status"`
	ExternalTaskId string          `gorm:"size:128" json:"external_task_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NextWaveNumber derives the human-sortable number YYYYMMDD-<branch>-NNN from
// today's wave count for the branch. The count read and the subsequent insert
// are separate statements; concurrent triggers for the same branch can race,
// which the unique index on (company_id, wave_number) turns into a loud
// insert failure rather than a silent duplicate.
func NextWaveNumber(ctx context.Context, db *gorm.DB, companyId string, branch string, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := db.WithContext(ctx).
		Model(&ReplenishmentWave{}).
		Where("company_id = ? AND branch = ? AND generated_at >= ? AND generated_at < ?",
			companyId, branch, dayStart, dayStart.Add(24*time.Hour)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return FormatWaveNumber(now, branch, int(count)+1), nil
}

func FormatWaveNumber(day time.Time, branch string, sequence int) string {
	return fmt.Sprintf("%s-%s-%03d", day.Format("20060102"), branch, sequence)
}

// CreateWaveWithTasks inserts the wave and its ordered tasks. Task inserts are
// best-effort one by one so a single bad row does not sink the wave; the first
// failure is returned after the remaining rows were attempted.
func CreateWaveWithTasks(ctx context.Context, db *gorm.DB, wave *ReplenishmentWave, tasks []ReplenishmentTask) error {
	if err := db.WithContext(ctx).Omit("Tasks").Create(wave).Error; err != nil {
		return err
	}
	var firstErr error
	for i := range tasks {
		tasks[i].WaveId = wave.ID
		tasks[i].Sequence = i + 1
		if err := db.WithContext(ctx).Create(&tasks[i]).Error; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func MarkWaveSent(ctx context.Context, db *gorm.DB, waveId uint, ackReference string, dispatchedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&ReplenishmentWave{}).
		Where("id = ?", waveId).
		Updates(map[string]interface{}{
			"status":        WaveStatusSent,
			"ack_reference": ackReference,
			"dispatched_at": dispatchedAt,
			"error_text":    "",
		}).Error
}

func MarkWaveFailed(ctx context.Context, db *gorm.DB, waveId uint, errorText string) error {
	return db.WithContext(ctx).
		Model(&ReplenishmentWave{}).
		Where("id = ?", waveId).
		Updates(map[string]interface{}{
			"status":     WaveStatusFailed,
			"error_text": errorText,
		}).Error
}

// MarkWaveCompleted closes the wave and all of its tasks.
func MarkWaveCompleted(ctx context.Context, db *gorm.DB, wave *ReplenishmentWave, completedAt time.Time) error {
	if err := db.WithContext(ctx).
		Model(&ReplenishmentWave{}).
		Where("id = ?", wave.ID).
		Updates(map[string]interface{}{
			"status":          WaveStatusCompleted,
			"completed_tasks": wave.TotalTasks,
			"completed_at":    completedAt,
		}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&ReplenishmentTask{}).
		Where("wave_id = ?", wave.ID).
		Update("status", TaskStatusCompleted).Error
}

// ListSentWavesBefore returns sent waves whose dispatch is older than the
// cutoff, tasks preloaded, oldest first.
func ListSentWavesBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]ReplenishmentWave, error) {
	var waves []ReplenishmentWave
	err := db.WithContext(ctx).
		Preload("Tasks").
		Where("status = ? AND dispatched_at IS NOT NULL AND dispatched_at < ?", WaveStatusSent, cutoff).
		Order("dispatched_at ASC").
		Find(&waves).Error
	return waves, err
}
