package replen

import (
	"context"
	"sort"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/ClaudioSBezerra/JC-CP01-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReplenishQty is how much a task moves: fill the location back to max.
// When max <= current (inconsistent master data, since the row is also at or
// below min) fall back to min so every task still moves some stock.
func ReplenishQty(rec models.StockRecord) decimal.Decimal {
	qty := rec.MaxQty.Sub(rec.CurrentQty)
	if qty.IsPositive() {
		return qty
	}
	return rec.MinQty
}

// PlanTasks turns below-minimum rows into the ordered task list of one wave:
// priority ascending (A first), then shortage magnitude (min-current)
// descending. The order is what the pickers walk, so persisting it matters.
func PlanTasks(records []models.StockRecord) []models.ReplenishmentTask {
	tasks := make([]models.ReplenishmentTask, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, models.ReplenishmentTask{
			LocationCode:   rec.LocationCode,
			ProductCode:    rec.ProductCode,
			Description:    rec.Description,
			CurrentQty:     rec.CurrentQty,
			MinQty:         rec.MinQty,
			QtyToReplenish: ReplenishQty(rec),
			AbcClass:       rec.AbcClass,
			Priority:       models.PriorityForAbcClass(rec.AbcClass),
			Status:         models.TaskStatusPending,
		})
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		gapI := tasks[i].MinQty.Sub(tasks[i].CurrentQty)
		gapJ := tasks[j].MinQty.Sub(tasks[j].CurrentQty)
		return gapI.GreaterThan(gapJ)
	})
	return tasks
}

func buildWavePayload(wave *models.ReplenishmentWave, tasks []models.ReplenishmentTask) WavePayload {
	payload := WavePayload{
		WaveNumber:  wave.WaveNumber,
		Branch:      wave.Branch,
		GeneratedAt: wave.GeneratedAt,
		Tasks:       make([]WaveTaskPayload, 0, len(tasks)),
	}
	for _, t := range tasks {
		payload.Tasks = append(payload.Tasks, WaveTaskPayload{
			LocationCode:   t.LocationCode,
			ProductCode:    t.ProductCode,
			Description:    t.Description,
			QtyToReplenish: t.QtyToReplenish,
			AbcClass:       t.AbcClass,
			Priority:       t.Priority,
		})
	}
	return payload
}

// generateWave builds, persists and dispatches one wave for a branch.
// No below-minimum rows is a no-op, not an error. On dispatch failure the
// wave and its tasks stay persisted in failed status for diagnostics.
func (s *Scheduler) generateWave(ctx context.Context, db *gorm.DB, gw Gateway, companyId string, branch string) (*models.ReplenishmentWave, error) {
	records, err := models.ListBelowMinimum(ctx, db, companyId, branch)
	if err != nil {
		return nil, err
	}
	tasks := PlanTasks(records)
	if len(tasks) == 0 {
		return nil, nil
	}

	now := time.Now()
	waveNumber, err := models.NextWaveNumber(ctx, db, companyId, branch, now)
	if err != nil {
		return nil, err
	}

	triggeredBy, _ := utils.GetTriggerSourceFromContext(ctx)
	wave := &models.ReplenishmentWave{
		CompanyId:   companyId,
		Branch:      branch,
		WaveNumber:  waveNumber,
		Status:      models.WaveStatusGenerated,
		TriggeredBy: triggeredBy,
		TotalTasks:  len(tasks),
		GeneratedAt: now,
	}
	if err := models.CreateWaveWithTasks(ctx, db, wave, tasks); err != nil {
		return nil, err
	}

	start := time.Now()
	ack, sendErr := gw.SendWave(ctx, companyId, buildWavePayload(wave, tasks))
	if sendErr != nil {
		if err := models.MarkWaveFailed(ctx, db, wave.ID, sendErr.Error()); err != nil {
			s.logWriteFailure(ctx, "generateWave", err)
		}
		s.logAction(ctx, db, models.SyncActionWaveSend, models.SyncStatusFailed,
			len(tasks), sendErr.Error(), start)
		return wave, sendErr
	}

	dispatchedAt := time.Now()
	if err := models.MarkWaveSent(ctx, db, wave.ID, ack, dispatchedAt); err != nil {
		s.logWriteFailure(ctx, "generateWave", err)
	}
	s.logAction(ctx, db, models.SyncActionWaveSend, models.SyncStatusSuccess,
		len(tasks), "", start)
	return wave, nil
}
