package replen

import (
	"context"
	"testing"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/ClaudioSBezerra/JC-CP01-sub001/utils"
)

// Audit rows are built from the context the cycle runs under: company, branch,
// trigger source and correlation id must all land on the row.
func TestSyncLogEntryFromContext(t *testing.T) {
	ctx := utils.SetCompanyIdInContext(context.Background(), "acme")
	ctx = utils.SetBranchCodeInContext(ctx, "SP01")
	ctx = utils.SetTriggerSourceInContext(ctx, models.TriggerManual)
	ctx = utils.SetCorrelationIdInContext(ctx, "cid-123")

	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	finish := start.Add(1500 * time.Millisecond)
	entry := syncLogEntryFromContext(ctx, models.SyncActionStockFetch, models.SyncStatusSuccess, 7, "", start, finish)

	if entry.CompanyId != "acme" || entry.Branch != "SP01" {
		t.Fatalf("identity not carried from context: %+v", entry)
	}
	if entry.TriggeredBy != models.TriggerManual {
		t.Fatalf("trigger source not carried from context: %q", entry.TriggeredBy)
	}
	if entry.CorrelationId != "cid-123" {
		t.Fatalf("correlation id not carried from context: %q", entry.CorrelationId)
	}
	if entry.Action != models.SyncActionStockFetch || entry.Status != models.SyncStatusSuccess || entry.RecordCount != 7 {
		t.Fatalf("unexpected row %+v", entry)
	}
	if entry.DurationMs != 1500 {
		t.Fatalf("expected 1500ms duration, got %d", entry.DurationMs)
	}
	if !entry.StartedAt.Equal(start) || !entry.FinishedAt.Equal(finish) {
		t.Fatalf("timestamps not preserved: %+v", entry)
	}
}

func TestSyncLogEntryFromContext_BareContext(t *testing.T) {
	start := time.Now()
	entry := syncLogEntryFromContext(context.Background(), models.SyncActionWaveSend, models.SyncStatusFailed, 0, "boom", start, start)
	if entry.CompanyId != "" || entry.Branch != "" || entry.TriggeredBy != "" || entry.CorrelationId != "" {
		t.Fatalf("bare context must yield empty identity fields: %+v", entry)
	}
	if entry.ErrorText != "boom" {
		t.Fatalf("error text not preserved: %q", entry.ErrorText)
	}
}
