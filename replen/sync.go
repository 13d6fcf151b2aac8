package replen

import (
	"context"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/ClaudioSBezerra/JC-CP01-sub001/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// syncBranch runs one full cycle for a company+branch pair:
// fetch stock, apply it, log, sample fragmentation, maybe generate a wave.
// A fetch failure aborts the cycle before any stock write; everything after a
// successful fetch is best-effort and never rolls back earlier steps.
// The context carries company, branch and trigger source for the audit rows.
func (s *Scheduler) syncBranch(ctx context.Context, gw Gateway, companyId string, branch string) error {
	db := s.DB()
	start := time.Now()

	levels, err := gw.FetchStock(ctx, companyId, branch)
	if err != nil {
		s.logAction(ctx, db, models.SyncActionStockFetch, models.SyncStatusFailed, 0, err.Error(), start)
		return err
	}

	syncedAt := time.Now()
	applied := 0
	for _, level := range levels {
		rows, err := models.ApplyStockLevel(ctx, db, companyId, branch, level.ProductCode, level.CurrentQty, syncedAt)
		if err != nil {
			// One bad row must not sink the cycle; the write is retried on
			// the next fetch anyway.
			s.logWriteFailure(ctx, "syncBranch", err)
			continue
		}
		if rows == 0 {
			// Unknown product for this branch: not the sync's job to create
			// stock rows.
			continue
		}
		applied++
	}

	s.logAction(ctx, db, models.SyncActionStockFetch, models.SyncStatusSuccess, applied, "", start)

	records, err := models.ListBranchStock(ctx, db, companyId, branch)
	if err != nil {
		s.logWriteFailure(ctx, "syncBranch", err)
		return nil
	}

	below := CountBelowMinimum(records)
	sample := &models.FragmentationSample{
		CompanyId:       companyId,
		Branch:          branch,
		Score:           FragmentationScore(records),
		BelowMinCount:   below,
		ActiveLocations: CountEligible(records),
		TakenAt:         time.Now(),
	}
	if err := models.CreateFragmentationSample(ctx, db, sample); err != nil {
		s.logWriteFailure(ctx, "syncBranch", err)
	}

	if below > 0 {
		if _, err := s.generateWave(ctx, db, gw, companyId, branch); err != nil {
			// Logged inside generateWave via the wave_send audit row; the
			// stock update and the sample stand regardless.
			s.Logger.WithFields(logrus.Fields{
				"module":  "replen",
				"company": companyId,
				"branch":  branch,
			}).Warnf("wave generation failed: %v", err)
		}
	}
	return nil
}

// syncLogEntryFromContext assembles one audit row. Company, branch, trigger
// source and correlation id all travel on the context.
func syncLogEntryFromContext(ctx context.Context, action string, status string, recordCount int, errorText string, startedAt time.Time, finishedAt time.Time) *models.SyncLogEntry {
	companyId, _ := utils.GetCompanyIdFromContext(ctx)
	branch, _ := utils.GetBranchCodeFromContext(ctx)
	triggeredBy, _ := utils.GetTriggerSourceFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	return &models.SyncLogEntry{
		CompanyId:     companyId,
		Branch:        branch,
		Action:        action,
		Status:        status,
		RecordCount:   recordCount,
		ErrorText:     errorText,
		DurationMs:    finishedAt.Sub(startedAt).Milliseconds(),
		TriggeredBy:   triggeredBy,
		CorrelationId: cid,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
	}
}

func (s *Scheduler) logAction(ctx context.Context, db *gorm.DB, action string, status string, recordCount int, errorText string, startedAt time.Time) {
	entry := syncLogEntryFromContext(ctx, action, status, recordCount, errorText, startedAt, time.Now())
	if err := models.CreateSyncLogEntry(ctx, db, entry); err != nil {
		s.logWriteFailure(ctx, "logAction", err)
	}
}

// logWriteFailure reports a persistence failure without aborting anything:
// each row write is independent and the next tick retries the cycle.
func (s *Scheduler) logWriteFailure(ctx context.Context, funcName string, err error) {
	companyId, _ := utils.GetCompanyIdFromContext(ctx)
	branch, _ := utils.GetBranchCodeFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	s.Logger.WithFields(logrus.Fields{
		"module":         "replen",
		"funcName":       funcName,
		"company":        companyId,
		"branch":         branch,
		"correlation_id": cid,
	}).Error(err.Error())
}
