package replen

import (
	"context"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/ClaudioSBezerra/JC-CP01-sub001/utils"
)

// reconcileWaves closes out sent waves the external system is presumed to
// have finished: no completion callback exists, so a wave dispatched longer
// ago than the grace window is taken as done. Each wave is handled
// independently; one failure never blocks the rest of the batch.
func (s *Scheduler) reconcileWaves(ctx context.Context) {
	db := s.DB()
	cutoff := time.Now().Add(-s.CompletionGrace)

	waves, err := models.ListSentWavesBefore(ctx, db, cutoff)
	if err != nil {
		s.logWriteFailure(ctx, "reconcileWaves", err)
		return
	}

	for i := range waves {
		wave := &waves[i]
		start := time.Now()

		// The wave row is the identity source here; the completion audit row
		// keeps the trigger that originally started the wave.
		wctx := utils.SetCompanyIdInContext(ctx, wave.CompanyId)
		wctx = utils.SetBranchCodeInContext(wctx, wave.Branch)
		wctx = utils.SetTriggerSourceInContext(wctx, wave.TriggeredBy)

		if err := models.MarkWaveCompleted(wctx, db, wave, start); err != nil {
			s.logWriteFailure(wctx, "reconcileWaves", err)
			continue
		}

		// Reflect the simulated physical restock into the stock store.
		// Row writes stay best-effort: a location that fails keeps its old
		// quantity and the next fetch corrects it.
		for _, task := range wave.Tasks {
			if err := models.RefillLocation(wctx, db, wave.CompanyId, wave.Branch, task.LocationCode, task.ProductCode, start); err != nil {
				s.logWriteFailure(wctx, "reconcileWaves", err)
			}
		}

		s.logAction(wctx, db, models.SyncActionWaveComplete, models.SyncStatusSuccess, wave.TotalTasks, "", start)
	}
}
