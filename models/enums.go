package models

const (
	WaveStatusGenerated = "generated"
	WaveStatusSent      = "sent"
	WaveStatusCompleted = "completed"
	WaveStatusFailed    = "failed"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

const (
	SyncActionStockFetch   = "stock_fetch"
	SyncActionWaveSend     = "wave_send"
	SyncActionWaveComplete = "wave_complete"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

const (
	AbcClassA = "A"
	AbcClassB = "B"
	AbcClassC = "C"
)

// PriorityForAbcClass maps turnover class to picking priority.
// Unclassified locations rank with class C.
func PriorityForAbcClass(class string) int {
	switch class {
	case AbcClassA:
		return 1
	case AbcClassB:
		return 2
	default:
		return 3
	}
}
